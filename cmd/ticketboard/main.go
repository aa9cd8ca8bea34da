// ticketboard is a terminal board for the tickets kept by a ticket
// service. Every change is written to the service and followed by a
// full reload of the list.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Madmaxim22/HelpDesk/internal/app"
	"github.com/Madmaxim22/HelpDesk/internal/board"
	"github.com/Madmaxim22/HelpDesk/internal/credential"
	"github.com/Madmaxim22/HelpDesk/internal/logging"
	"github.com/Madmaxim22/HelpDesk/internal/model"
	"github.com/Madmaxim22/HelpDesk/internal/source/ticketapi"
	appsync "github.com/Madmaxim22/HelpDesk/internal/sync"
	configview "github.com/Madmaxim22/HelpDesk/internal/ui/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	var (
		configPath  string
		setToken    string
		clearToken  bool
		writeConfig bool
	)

	flags := pflag.NewFlagSet("ticketboard", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", model.DefaultConfigPath(), "path to the YAML config file")
	flags.String("base-url", "", "ticket service URL")
	flags.Int("timeout", 0, "request timeout in seconds")
	flags.String("delete-method", "", "HTTP verb for deleteById (GET or DELETE)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "log file path")
	flags.Int("refresh", 0, "reload the board every N seconds (0 disables)")
	flags.StringVar(&setToken, "set-token", "", "store the service token in the system keyring and exit")
	flags.BoolVar(&clearToken, "clear-token", false, "remove the service token from the system keyring and exit")
	flags.BoolVar(&writeConfig, "write-config", false, "write the effective config to --config and exit")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := model.LoadConfig(configPath, flags)
	if err != nil {
		return err
	}

	switch {
	case writeConfig:
		if err := model.SaveConfig(configPath, cfg); err != nil {
			return err
		}
		fmt.Printf("config written to %s\n", configPath)
		return nil
	case setToken != "" || clearToken:
		return manageToken(cfg.Server.TokenKey, setToken, clearToken)
	}

	logFile, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := logging.New(cfg.Log.Level, logFile, false)

	token, err := credential.ResolveToken(cfg.Server.TokenKey)
	if err != nil {
		// Run unauthenticated; the service will answer 401 if it cares.
		logger.Warn().Err(err).Str("key", cfg.Server.TokenKey).Msg("service token unavailable")
	}

	client := ticketapi.NewClient(cfg.Server.BaseURL,
		ticketapi.WithTimeout(time.Duration(cfg.Server.TimeoutSec)*time.Second),
		ticketapi.WithDeleteMethod(cfg.Server.DeleteMethod),
		ticketapi.WithToken(token),
	)

	events := appsync.NewBridge()
	manager := board.New(client, events, logger)

	poller := appsync.NewPoller(manager.LoadAll,
		time.Duration(cfg.Display.RefreshSec)*time.Second, logger)
	poller.Start()
	defer poller.Stop()

	logger.Info().
		Str("base_url", cfg.Server.BaseURL).
		Str("delete_method", cfg.Server.DeleteMethod).
		Msg("starting ticketboard")

	root := app.New(app.Deps{
		Board:         manager,
		Events:        events,
		Poller:        poller,
		Server:        cfg.Server,
		CheckSettings: checkSettings(token),
		SaveSettings:  saveSettings(configPath, cfg),
		Logger:        logger,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.Display.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	_, err = tea.NewProgram(root, opts...).Run()
	return err
}

// checkSettings probes the service with a single list call.
func checkSettings(currentToken string) configview.Validator {
	return func(ctx context.Context, sc model.ServerConfig, token string) error {
		if token == "" {
			token = currentToken
		}
		c := ticketapi.NewClient(sc.BaseURL,
			ticketapi.WithTimeout(time.Duration(sc.TimeoutSec)*time.Second),
			ticketapi.WithToken(token),
		)
		_, err := c.ListAll(ctx)
		return err
	}
}

// saveSettings writes the server section back to the config file and
// stores a new token in the keyring.
func saveSettings(path string, cfg *model.AppConfig) configview.Saver {
	return func(sc model.ServerConfig, token string) error {
		if token != "" {
			sc.TokenKey = credential.TokenKey(sc.TokenKey)
			if err := credential.SaveToken(sc.TokenKey, token); err != nil {
				return err
			}
		}
		next := *cfg
		next.Server = sc
		return model.SaveConfig(path, &next)
	}
}

func manageToken(key, value string, remove bool) error {
	if key == "" {
		return fmt.Errorf("server.token_key is not set in the config")
	}
	if remove {
		if err := credential.ForgetToken(key); err != nil {
			return err
		}
		fmt.Printf("token %q removed\n", key)
		return nil
	}
	if err := credential.SaveToken(key, value); err != nil {
		return err
	}
	fmt.Printf("token %q saved\n", key)
	return nil
}
