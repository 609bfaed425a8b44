package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"rpascribe/internal/action"
	"rpascribe/internal/api/routes"
	"rpascribe/internal/config"
	"rpascribe/internal/recorder"
	"rpascribe/internal/services"
	"rpascribe/internal/tracker"
	"rpascribe/internal/transcoder"
	"rpascribe/pkg/auth"
	"rpascribe/pkg/database"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "rpascribe",
		Short: "Record browser interactions and export them as RPA scripts",
	}

	root.AddCommand(serveCmd(), exportCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the recording API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.JWT.Secret, cfg.JWT.ExpireTime)

	// Initialize database
	if err := database.InitDatabase(cfg); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Configure the recorder registry with the initial capture settings.
	settings, err := config.LoadCaptureSettings(cfg.Capture.SettingsFile)
	if err != nil {
		return err
	}
	recorder.Default.Configure(cfg.Chrome.MaxSessions, cfg.Chrome.HeadlessMode, trackerSettings(settings))

	// Hot-reload capture settings on file changes.
	stopWatch, err := config.WatchCaptureSettings(cfg.Capture.SettingsFile, func(s config.CaptureSettings) {
		recorder.Default.UpdateSettings(trackerSettings(s))
	})
	if err != nil {
		return err
	}

	// Initialize janitor service
	if err := services.InitJanitor(); err != nil {
		return fmt.Errorf("failed to initialize janitor: %w", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize router
	router := routes.SetupRoutes(cfg)

	// Setup graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Shutting down server...")

		stopWatch()
		if services.GlobalJanitor != nil {
			services.GlobalJanitor.Stop()
		}

		log.Println("Server shutdown complete")
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)

	if err := router.Run(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func trackerSettings(s config.CaptureSettings) tracker.Settings {
	out := tracker.DefaultSettings()
	if s.InputDebounceMillis > 0 {
		out.InputDebounce = time.Duration(s.InputDebounceMillis) * time.Millisecond
	}
	if s.ScrollDebounceMillis > 0 {
		out.ScrollDebounce = time.Duration(s.ScrollDebounceMillis) * time.Millisecond
	}
	if s.HoverDebounceMillis > 0 {
		out.HoverDebounce = time.Duration(s.HoverDebounceMillis) * time.Millisecond
	}
	out.SensitiveKeywords = s.SensitiveKeywords
	return out
}

func exportCmd() *cobra.Command {
	var output string
	var smartWaits bool

	cmd := &cobra.Command{
		Use:   "export <actions.json>",
		Short: "Transcode a saved action log into an RPA script offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read action log: %w", err)
			}

			actions, err := action.UnmarshalLog(string(data))
			if err != nil {
				return fmt.Errorf("failed to parse action log: %w", err)
			}

			t := transcoder.New()
			targets := t.Transcode(actions)
			if smartWaits {
				targets = t.InsertSmartWaits(targets)
			}

			out, err := json.MarshalIndent(targets, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode script: %w", err)
			}

			if output == "" {
				fmt.Println(string(out))
				return nil
			}
			if err := os.WriteFile(output, out, 0644); err != nil {
				return fmt.Errorf("failed to write script: %w", err)
			}
			log.Printf("wrote %d target actions to %s", len(targets), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the script to a file instead of stdout")
	cmd.Flags().BoolVar(&smartWaits, "smart-waits", false, "insert settle waits between consecutive interactions")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rpascribe version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rpascribe %s\n", version)
		},
	}
}
