package main

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
	IDsFile    string
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    60 * time.Second,
		IDsFile:    getEnv("LIFESIM_CHARACTERS_FILE", defaultIDsFile()),
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	ids, err := loadCharacterIDs(cfg.IDsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read saved characters: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, ids),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func defaultIDsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lifesim_characters"
	}
	return filepath.Join(home, ".lifesim_characters")
}

// loadCharacterIDs reads one character id per line. A missing file is an
// empty list.
func loadCharacterIDs(path string) ([]uuid.UUID, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close() // Ignore error in defer
	}()

	var ids []uuid.UUID
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id, err := uuid.Parse(strings.TrimSpace(scanner.Text()))
		if err != nil {
			continue
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, scanner.Err()
}

func saveCharacterIDs(path string, ids []uuid.UUID) error {
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(id.String())
		sb.WriteString("\n")
	}
	return os.WriteFile(path, []byte(sb.String()), 0o600)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
