// Command refresh_token exchanges the stored Upstox refresh token for a
// fresh access token and prints it, so shell scripts can do
// export UPSTOX_ACCESS_TOKEN=$(refresh_token).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pritamkhande/nifty500-eod-upstox/services/config"
	"github.com/pritamkhande/nifty500-eod-upstox/services/upstox"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	creds := upstox.RefreshCredentials{
		ClientID:     cfg.Upstox.ClientID,
		ClientSecret: cfg.Upstox.ClientSecret,
		RefreshToken: cfg.Upstox.RefreshToken,
	}
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		fmt.Fprintln(os.Stderr, "set UPSTOX_CLIENT_ID, UPSTOX_CLIENT_SECRET and UPSTOX_REFRESH_TOKEN")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, err := upstox.NewClient("").RefreshAccessToken(ctx, creds)
	if err != nil {
		fmt.Fprintln(os.Stderr, "refresh failed:", err)
		os.Exit(1)
	}
	// Only the token goes to stdout; everything else is stderr.
	fmt.Println(token)
}
