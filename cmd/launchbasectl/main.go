// launchbasectl es el CLI de operaciones: habla con la API HTTP del
// servicio (health, cuentas, tokens) desde la terminal.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body any) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, strings.TrimRight(c.BaseURL, "/")+path, rd)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("LAUNCHBASE_URL", "http://localhost:8080")
		token   = envOr("LAUNCHBASE_TOKEN", "")
		out     = envOr("LAUNCHBASE_OUT", "text")
	)

	root := &cobra.Command{
		Use:   "launchbasectl",
		Short: "CLI de operaciones para LaunchBase",
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base de la API (env LAUNCHBASE_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "access token para rutas protegidas (env LAUNCHBASE_TOKEN)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{HTTP: &http.Client{Timeout: 30 * time.Second}}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL = baseURL
		cl.Token = token
		cl.OutFormat = out
	}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Chequea /readyz",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/readyz", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("not ready: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	var regEmail, regName, regPassword string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Registra una cuenta",
		RunE: func(cmd *cobra.Command, args []string) error {
			if regEmail == "" || regPassword == "" || regName == "" {
				return fmt.Errorf("--email, --name and --password are required")
			}
			status, body, err := cl.do("POST", "/auth/register", map[string]string{
				"email": regEmail, "name": regName, "password": regPassword,
			})
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	registerCmd.Flags().StringVar(&regEmail, "email", "", "email de la cuenta")
	registerCmd.Flags().StringVar(&regName, "name", "", "nombre")
	registerCmd.Flags().StringVar(&regPassword, "password", "", "contraseña")

	var loginEmail, loginPassword string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Login y muestra los tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if loginEmail == "" || loginPassword == "" {
				return fmt.Errorf("--email and --password are required")
			}
			status, body, err := cl.do("POST", "/auth/login", map[string]string{
				"email": loginEmail, "password": loginPassword,
			})
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "contraseña")

	var verifyToken string
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verifica un access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verifyToken == "" {
				verifyToken = token
			}
			if verifyToken == "" {
				return fmt.Errorf("--token or env LAUNCHBASE_TOKEN is required")
			}
			status, body, err := cl.do("POST", "/auth/verify-token", map[string]string{"token": verifyToken})
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	verifyCmd.Flags().StringVar(&verifyToken, "token", "", "token a verificar")

	var accountEmail string
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Detalle de cuenta (requiere --token)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if accountEmail == "" {
				return fmt.Errorf("--email is required")
			}
			status, body, err := cl.do("GET", "/auth/account/details?email="+url.QueryEscape(accountEmail), nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	accountCmd.Flags().StringVar(&accountEmail, "email", "", "email de la cuenta")

	subCmd := &cobra.Command{
		Use:   "subscription",
		Short: "Detalle de suscripción (requiere --token)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/subscription/details", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}

	root.AddCommand(pingCmd, registerCmd, loginCmd, verifyCmd, accountCmd, subCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
