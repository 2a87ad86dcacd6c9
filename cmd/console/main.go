package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jwebster45206/survival-engine/internal/handlers"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

func main() {
	apiURL := flag.String("api", getEnv("API_BASE_URL", "http://localhost:8080"), "API base URL")
	speciesID := flag.String("species", "", "species id (server default when empty)")
	sex := flag.String("sex", "female", "male or female")
	name := flag.String("name", "", "optional name for the animal")
	seed := flag.Uint64("seed", 0, "random seed (0 lets the server choose)")
	resume := flag.String("id", "", "resume an existing animal by id")
	flag.Parse()

	api := NewAPIClient(&http.Client{Timeout: 30 * time.Second}, *apiURL)
	if !api.Healthy() {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	animal, err := startAnimal(api, *resume, *speciesID, *sex, *name, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(api, animal),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func startAnimal(api *APIClient, resume, speciesID, sex, name string, seed uint64) (*handlers.AnimalResponse, error) {
	if resume != "" {
		id, err := uuid.Parse(resume)
		if err != nil {
			return nil, fmt.Errorf("invalid animal id %q: %w", resume, err)
		}
		return api.GetAnimal(id)
	}

	req := handlers.CreateAnimalRequest{Species: speciesID, Sex: world.Sex(sex), Name: name}
	switch req.Sex {
	case world.Male, world.Female:
	default:
		return nil, fmt.Errorf("sex must be male or female, got %q", sex)
	}
	if seed != 0 {
		req.Seed = &seed
	}
	return api.CreateAnimal(req)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
