package cli

import (
	"errors"
	"fmt"

	"github.com/bscott/mail-wordcloud/internal/config"
	"github.com/bscott/mail-wordcloud/internal/imap"
)

const loginFailedNotice = "Unable to login under those credentials."

// authenticator is the part of the IMAP client the login loop needs.
type authenticator interface {
	Login(username, password string) error
}

// login tries the keyring password for the configured username first, then
// prompts until the server accepts the credentials. The configured username
// is used for the first prompt only. Only a rejected login is retried; any
// other error ends the loop.
func login(ctx *Context, client authenticator, savePassword bool) (string, error) {
	username := ctx.Config.IMAP.Username

	if username != "" {
		password, err := config.GetPassword(username)
		if err != nil {
			ctx.Logger.Warn("keyring lookup failed", "user", username, "err", err)
		}
		if password != "" {
			err := client.Login(username, password)
			if err == nil {
				ctx.Logger.Debug("logged in with stored password", "user", username)
				return username, nil
			}
			if !errors.Is(err, imap.ErrAuthFailed) {
				return "", err
			}
			ctx.Prompter.Notice(fmt.Sprintf("The stored password for %s was rejected.", username))
		}
	}

	for attempt := 1; ; attempt++ {
		user := username
		if user == "" {
			var err error
			if user, err = ctx.Prompter.Username(); err != nil {
				return "", err
			}
		}

		password, err := ctx.Prompter.Password()
		if err != nil {
			return "", err
		}

		err = client.Login(user, password)
		if err == nil {
			if savePassword {
				if err := config.SetPassword(user, password); err != nil {
					ctx.Formatter.Warnf("could not store password in keyring: %v", err)
				} else {
					ctx.Formatter.Verbosef("Password stored in system keyring.")
				}
			}
			return user, nil
		}
		if !errors.Is(err, imap.ErrAuthFailed) {
			return "", err
		}

		ctx.Logger.Debug("login rejected", "user", user, "attempt", attempt, "err", err)
		ctx.Prompter.Notice(loginFailedNotice)
		// the configured username may be the wrong half
		username = ""
	}
}

// connect dials the configured server and logs in.
func connect(ctx *Context, savePassword bool) (*imap.Client, error) {
	client, err := imap.NewClient(ctx.Config)
	if err != nil {
		return nil, err
	}

	ctx.Formatter.Verbosef("Connecting to %s...", client.Addr())
	if err := client.Connect(); err != nil {
		return nil, err
	}

	user, err := login(ctx, client, savePassword)
	if err != nil {
		client.Close()
		return nil, err
	}
	ctx.Formatter.Verbosef("Logged in as %s", user)

	return client, nil
}
