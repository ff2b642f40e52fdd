package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/pkg/models"
)

var (
	// ErrUnknownSport is returned for a sport with no registered module
	ErrUnknownSport = errors.New("sport module not found")
	// ErrInvalidMatch is returned when a fixture cannot be seeded
	ErrInvalidMatch = errors.New("invalid match")
)

// SeedOptions carries sport-specific settings for a new scorecard
type SeedOptions struct {
	Format models.Format
}

// SportModule is the pluggable interface for adding new sports
type SportModule interface {
	Sport() models.SportType
	DisplayName() string

	// ValidateMatch checks a fixture before it is seeded
	ValidateMatch(match *models.Match) error

	// NewScorecard builds the initial live state of a fixture
	NewScorecard(match models.Match, opts SeedOptions) (patch.Tree, error)
}

// Registry manages available sport modules
type Registry struct {
	modules map[models.SportType]SportModule
}

// New creates a new sport registry with all available sports
func New() *Registry {
	r := &Registry{
		modules: make(map[models.SportType]SportModule),
	}

	r.Register(Cricket{})
	r.Register(Universal{SportType: models.SportFootball, Name: "Football", Periods: 2, Label: halfLabel})
	r.Register(Universal{SportType: models.SportBasketball, Name: "Basketball", Periods: 4, Label: prefixLabel("Q")})
	r.Register(Universal{SportType: models.SportHockey, Name: "Hockey", Periods: 3, Label: prefixLabel("P")})
	r.Register(Universal{SportType: models.SportVolleyball, Name: "Volleyball", Periods: 5, Label: prefixLabel("Set ")})

	return r
}

// Register adds a sport module to the registry
func (r *Registry) Register(module SportModule) {
	r.modules[module.Sport()] = module
}

// GetModule retrieves a sport module by sport
func (r *Registry) GetModule(sport models.SportType) (SportModule, error) {
	module, ok := r.modules[sport]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSport, sport)
	}
	return module, nil
}

// Sports returns all registered sports in name order
func (r *Registry) Sports() []models.SportType {
	keys := make([]models.SportType, 0, len(r.modules))
	for key := range r.modules {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Seed validates a fixture and builds its initial scorecard
func (r *Registry) Seed(match models.Match, opts SeedOptions) (patch.Tree, error) {
	module, err := r.GetModule(match.SportType)
	if err != nil {
		return nil, err
	}
	if err := validateFixture(&match); err != nil {
		return nil, err
	}
	if err := module.ValidateMatch(&match); err != nil {
		return nil, err
	}
	if match.Status == "" {
		match.Status = models.StatusUpcoming
	}
	return module.NewScorecard(match, opts)
}

// validateFixture applies the checks shared by every sport
func validateFixture(m *models.Match) error {
	m.ID = strings.TrimSpace(m.ID)
	if m.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidMatch)
	}
	if m.Home.ID == "" || m.Away.ID == "" {
		return fmt.Errorf("%w: both teams need an id", ErrInvalidMatch)
	}
	if m.Home.ID == m.Away.ID {
		return fmt.Errorf("%w: a team cannot play itself", ErrInvalidMatch)
	}
	if m.Toss != nil {
		return fmt.Errorf("%w: a new match cannot carry a toss", ErrInvalidMatch)
	}
	seen := make(map[string]bool)
	for _, team := range []models.Team{m.Home, m.Away} {
		for _, p := range team.Players {
			if p.ID == "" {
				return fmt.Errorf("%w: player %q has no id", ErrInvalidMatch, p.Name)
			}
			if seen[p.ID] {
				return fmt.Errorf("%w: duplicate player id %s", ErrInvalidMatch, p.ID)
			}
			seen[p.ID] = true
		}
	}
	return nil
}
