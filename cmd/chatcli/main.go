package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jrsteele09/go-chat-frontend/api"
	"github.com/jrsteele09/go-chat-frontend/auth"
	"github.com/jrsteele09/go-chat-frontend/internal/config"
	"github.com/jrsteele09/go-chat-frontend/localstore"
	"github.com/jrsteele09/go-chat-frontend/workspace"
	"github.com/peterh/liner"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	storeFileName   = "chatcli.json"
	historyFileName = "chatcli_history"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	c := config.New()
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	store, err := openStore(c)
	if err != nil {
		return err
	}
	client := api.New(c.GetAPIBaseURL(), store, api.WithTimeout(c.GetAPITimeout()))
	ws, err := workspace.New(store, auth.NewMemoryCookies(), client)
	if err != nil {
		return err
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	historyFile := filepath.Join(c.GetDataFolder(), historyFileName)
	loadHistory(line, historyFile)
	defer func() {
		saveHistory(line, historyFile)
		line.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	r := newREPL(ws, line, os.Stdout)
	r.greet()
	for {
		input, err := line.Prompt("> ")
		if err != nil {
			// Ctrl+C, Ctrl+D
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
			}
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if !r.handle(ctx, input) {
			return nil
		}
	}
}

// openStore opens the client's local store, sealed when STORE_KEY is set
func openStore(c config.Config) (*localstore.FileStore, error) {
	var options []localstore.FileStoreOption
	if hexKey := c.GetStoreKey(); hexKey != "" {
		key, err := localstore.ParseKey(hexKey)
		if err != nil {
			return nil, err
		}
		options = append(options, localstore.WithSealKey(key))
	}
	return localstore.OpenFileStore(filepath.Join(c.GetDataFolder(), storeFileName), options...)
}

func loadHistory(line *liner.State, path string) {
	if f, err := os.Open(path); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}
