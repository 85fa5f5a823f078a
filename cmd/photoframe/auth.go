package main

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gaubeleo/photoframe/pkg/provider/googlephotos"
	"github.com/gaubeleo/photoframe/util/log"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

func newAuthCmd() *cobra.Command {
	var listen, logout bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Link the frame to a Google account",
		Long: `Runs the OAuth consent flow for the configured client secret.

By default the consent URL is printed; open it in any browser, approve access and
paste the address the browser is redirected to (or just its code parameter).
With --listen the redirect is received on ` + googlephotos.RedirectURI + `, which
only works when the browser runs on the frame itself.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			id := cfg.Service.InstanceID
			store := googlephotos.NewTokenStore(cfg.Google.TokenStore, cfg.ServiceDir(id), id)
			if logout {
				return store.Delete()
			}

			oauthCfg, err := googlephotos.LoadOAuthConfig(cfg.Google.ClientSecretFile, googlephotos.OAuthScopes())
			if err != nil {
				return err
			}
			auth := googlephotos.NewAuthenticator(oauthCfg, store)
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if listen {
				err = auth.StartOAuthFlow(ctx, func(u string) error {
					_, err := fmt.Fprintf(out, "Open this URL to authorize Photoframe:\n\n%s\n\n", u)
					return err
				})
			} else {
				verifier := oauth2.GenerateVerifier()
				fmt.Fprintf(out, "Open this URL to authorize Photoframe:\n\n%s\n\nPaste the redirected address or code: ", auth.AuthURL("photoframe", verifier))
				line, rerr := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if rerr != nil && line == "" {
					return fmt.Errorf("reading code: %w", rerr)
				}
				code, cerr := extractCode(line)
				if cerr != nil {
					return cerr
				}
				err = auth.Exchange(ctx, code, verifier)
			}
			if err != nil {
				return err
			}

			svc, err := newService(ctx, cfg)
			if err != nil {
				return err
			}
			if err := svc.PostSetup(ctx); err != nil {
				log.Warnf("Post setup failed: %v", err)
			}
			fmt.Fprintln(out, "Authorized.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&listen, "listen", false, "receive the redirect on the local callback server")
	cmd.Flags().BoolVar(&logout, "logout", false, "forget the stored token")
	return cmd
}

// extractCode accepts either a bare authorization code or the full redirect URL.
func extractCode(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("no code entered")
	}
	if !strings.Contains(input, "code=") {
		return input, nil
	}
	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid redirect address: %w", err)
	}
	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s", e)
	}
	code := q.Get("code")
	if code == "" {
		return "", errors.New("redirect address carries no code")
	}
	return code, nil
}
