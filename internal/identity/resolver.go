package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"soccerpipe/internal/metrics"
	"soccerpipe/internal/models"
	"soccerpipe/internal/repository"

	"github.com/rs/zerolog/log"
)

// Resolver implements the Team-Identity Resolver (component E): the
// multi-strategy ladder that maps a noisy incoming name, with optional
// birth year/gender/state hints, to a canonical team — creating one when
// every strategy misses.
type Resolver struct {
	teams       *repository.TeamRepository
	aliases     *repository.AliasRepository
	clubs       *repository.ClubRepository
	cache       *AliasCache
	threshold   float64
	currentYear int
}

// New constructs a Resolver. currentSeasonYear feeds the age-group birth-year
// extraction fallback (U14 -> currentSeasonYear - 14).
func New(teams *repository.TeamRepository, aliases *repository.AliasRepository, clubs *repository.ClubRepository, cache *AliasCache, threshold float64, currentSeasonYear int) *Resolver {
	return &Resolver{
		teams:       teams,
		aliases:     aliases,
		clubs:       clubs,
		cache:       cache,
		threshold:   threshold,
		currentYear: currentSeasonYear,
	}
}

// Input is the raw row the resolver is asked to place.
type Input struct {
	Name      string
	BirthYear *int32 // caller-supplied override; otherwise extracted from Name
	Gender    *models.Gender
	State     *string
}

// Resolve runs the strategy ladder and returns the resolved (or newly
// created) canonical team id, along with which strategy produced the hit,
// for the resolver-hit-rate metrics.
func (r *Resolver) Resolve(ctx context.Context, in Input) (int64, string, error) {
	normalized := Normalize(in.Name)

	birthYear := in.BirthYear
	if birthYear == nil {
		if y, ok := ExtractBirthYear(in.Name, r.currentYear); ok {
			birthYear = &y
		}
	}

	gender := in.Gender
	if gender == nil {
		if g, ok := ExtractGender(in.Name); ok {
			gg := models.Gender(g)
			gender = &gg
		}
	}

	// Strategy 1: exact alias hit (cache, then DB).
	if id, ok := r.cache.Get(ctx, normalized); ok {
		metrics.RecordResolverHit("alias_cache")
		return id, "alias_cache", nil
	}
	if id, ok, err := r.aliases.FindTeamIDByAlias(ctx, normalized); err != nil {
		return 0, "", fmt.Errorf("identity resolver: alias lookup: %w", err)
	} else if ok {
		r.cache.Set(ctx, normalized, id)
		metrics.RecordResolverHit("alias_exact")
		return id, "alias_exact", nil
	}

	// Strategy 2: exact canonical name.
	if team, err := r.teams.FindByExactCanonicalName(ctx, normalized); err != nil {
		return 0, "", fmt.Errorf("identity resolver: exact canonical lookup: %w", err)
	} else if team != nil {
		metrics.RecordResolverHit("canonical_exact")
		return team.ID, "canonical_exact", nil
	}

	// Strategy 3: suffix-stripped canonical name. Normalize has already
	// removed the suffix, so this branch does not fire; stored canonical_name
	// values are compared as stored, not suffix-stripped.
	stripped := StripSuffix(normalized)
	if stripped != normalized {
		if team, err := r.teams.FindByExactCanonicalName(ctx, stripped); err != nil {
			return 0, "", fmt.Errorf("identity resolver: suffix-stripped lookup: %w", err)
		} else if team != nil {
			metrics.RecordResolverHit("canonical_suffix_stripped")
			return team.ID, "canonical_suffix_stripped", nil
		}
	}

	// Strategies 4 & 5: prefix match gated on birth year.
	for _, prefixLen := range []int{30, 20} {
		candidates, err := r.teams.FindByPrefix(ctx, normalized, prefixLen)
		if err != nil {
			return 0, "", fmt.Errorf("identity resolver: prefix-%d lookup: %w", prefixLen, err)
		}
		if team := firstBirthYearCompatible(candidates, birthYear); team != nil {
			label := fmt.Sprintf("prefix_%d", prefixLen)
			metrics.RecordResolverHit(label)
			return team.ID, label, nil
		}
	}

	// Strategy 6: trigram similarity, constrained by state/gender when known.
	var stateArg *string
	if in.State != nil {
		stateArg = in.State
	}
	candidates, err := r.teams.FindBySimilarity(ctx, normalized, stateArg, gender, r.threshold)
	if err != nil {
		return 0, "", fmt.Errorf("identity resolver: trigram similarity: %w", err)
	}
	if team := firstBirthYearCompatibleTrigram(candidates, birthYear); team != nil {
		if err := r.aliases.Create(ctx, normalized, team.ID, models.AliasFuzzyLearned); err != nil {
			log.Warn().Err(err).Str("name", normalized).Msg("failed to persist fuzzy-learned alias")
		}
		metrics.RecordResolverHit("trigram")
		return team.ID, "trigram", nil
	}

	// Strategy 7: create.
	genderVal := models.GenderUnknown
	genderSource := models.SourceUnknown
	if gender != nil {
		genderVal = *gender
		genderSource = models.SourceParsed
	}
	birthYearSource := models.SourceUnknown
	if birthYear != nil {
		birthYearSource = models.SourceParsed
	}

	var clubID *int64
	if siblings, err := r.teams.FindByPrefix(ctx, normalized, 20); err != nil {
		log.Warn().Err(err).Str("name", normalized).Msg("identity resolver: club-prefix sibling lookup failed, creating without a club")
	} else if prefix := clubPrefix(normalized, siblings); prefix != "" {
		if id, err := r.findOrCreateClub(ctx, prefix); err != nil {
			log.Warn().Err(err).Str("club", prefix).Msg("identity resolver: failed to populate club")
		} else {
			clubID = &id
		}
	}

	created, err := r.teams.Create(ctx, &models.NewTeamInput{
		CanonicalName:   normalized,
		DisplayName:     in.Name,
		BirthYear:       birthYear,
		BirthYearSource: birthYearSource,
		Gender:          genderVal,
		GenderSource:    genderSource,
		State:           in.State,
		ClubID:          clubID,
	})
	if err != nil {
		return 0, "", fmt.Errorf("identity resolver: create: %w", err)
	}

	metrics.RecordResolverHit("created")
	return created.ID, "created", nil
}

// birthYearsCompatible implements the strategies 4-6 birth-year gate:
// absent years on either side are compatible with anything; present years
// must match exactly.
func birthYearsCompatible(candidate *int32, incoming *int32) bool {
	if candidate == nil || incoming == nil {
		return true
	}
	return *candidate == *incoming
}

func firstBirthYearCompatible(candidates []*models.CanonicalTeam, incoming *int32) *models.CanonicalTeam {
	for _, c := range candidates {
		var candidateYear *int32
		if c.BirthYear.Valid {
			candidateYear = &c.BirthYear.Int32
		}
		if birthYearsCompatible(candidateYear, incoming) {
			return c
		}
	}
	return nil
}

func firstBirthYearCompatibleTrigram(candidates []repository.TrigramCandidate, incoming *int32) *models.CanonicalTeam {
	for _, c := range candidates {
		var candidateYear *int32
		if c.Team.BirthYear.Valid {
			candidateYear = &c.Team.BirthYear.Int32
		}
		if birthYearsCompatible(candidateYear, incoming) {
			return c.Team
		}
	}
	return nil
}

// clubPrefix reports the leading word (or two) normalized shares with at
// least one sibling returned by a char-prefix scan, i.e. the part of the
// name that isn't just an age-group/gender suffix. Returns "" when there are
// no siblings or normalized is too short to have a meaningful club prefix,
// so a team created in isolation gets no club rather than a spurious
// single-team one.
func clubPrefix(normalized string, siblings []*models.CanonicalTeam) string {
	if len(siblings) == 0 {
		return ""
	}
	words := strings.Fields(normalized)
	if len(words) < 2 {
		return ""
	}
	wordCount := 2
	if len(words) < 3 {
		wordCount = 1
	}
	return strings.Join(words[:wordCount], " ")
}

// findOrCreateClub looks up an existing club by name, creating it on first
// sight of that prefix.
func (r *Resolver) findOrCreateClub(ctx context.Context, name string) (int64, error) {
	if existing, err := r.clubs.FindByName(ctx, name); err != nil {
		return 0, fmt.Errorf("find club: %w", err)
	} else if existing != nil {
		return existing.ID, nil
	}

	created, err := r.clubs.Create(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("create club: %w", err)
	}
	return created.ID, nil
}

// CurrentSeasonYear derives the operative season year from wall-clock time:
// youth soccer seasons in the US run fall-to-spring, so a season "year" is
// the year the fall portion starts.
func CurrentSeasonYear(now time.Time) int {
	if now.Month() >= time.August {
		return now.Year()
	}
	return now.Year() - 1
}
