package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"twitch-chat-bot/auth"
	"twitch-chat-bot/tokens"
)

var (
	tokenFile string
	tokenURL  string
	dotenvErr error
)

var rootCmd = &cobra.Command{
	Use:   "twitch-auth",
	Short: "Управление OAuth токеном приложения Twitch для чат-бота",
	Long: `twitch-auth получает и проверяет токен приложения (client credentials),
которым бот подписывает запросы к Twitch Helix.

Учётные данные читаются из TWITCH_CLIENT_ID и TWITCH_CLIENT_SECRET
(переменные окружения или .env).`,
	SilenceUsage: true,
}

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Получить токен приложения и сохранить его в файл",
	RunE:  runApp,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Показать срок действия сохранённого токена",
	RunE:  runStatus,
}

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		dotenvErr = err
	}

	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", envOr("TWITCH_TOKEN_FILE", tokens.DefaultTokenFile), "Путь к файлу токена")
	appCmd.Flags().StringVar(&tokenURL, "token-url", auth.DefaultTokenURL, "OAuth эндпоинт Twitch")

	rootCmd.AddCommand(appCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if dotenvErr != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", dotenvErr)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runApp(cmd *cobra.Command, _ []string) error {
	clientID := strings.TrimSpace(os.Getenv("TWITCH_CLIENT_ID"))
	if clientID == "" {
		return errors.New("TWITCH_CLIENT_ID is required")
	}

	clientSecret := strings.TrimSpace(os.Getenv("TWITCH_CLIENT_SECRET"))
	if clientSecret == "" {
		return errors.New("TWITCH_CLIENT_SECRET is required")
	}

	creds := auth.AppCredentials{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		MaxRetries:   3,
	}

	store := tokens.FileTokenStore{Path: tokenFile}
	manager := tokens.NewAppTokenManager(store, creds.GetAppToken)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	token, err := manager.Get(ctx)
	if err != nil {
		return fmt.Errorf("get app token: %w", err)
	}

	if err := store.SaveAppToken(token); err != nil {
		return fmt.Errorf("save app token: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ok, expires at %s\n", token.ExpiresAt.Format(time.RFC3339))
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	token, err := tokens.FileTokenStore{Path: tokenFile}.LoadAppToken()
	if err != nil {
		return err
	}

	state := "valid"
	if token.ExpiresWithin(time.Now(), 0) {
		state = "expired"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s, expires at %s\n", state, token.ExpiresAt.Format(time.RFC3339))
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
