package rebuild

import (
	"context"
	"fmt"

	"soccerpipe/internal/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CoverageThresholds gates whether a rebuilt shadow schema is safe to swap in.
// Strict escalates a NULL-birth_year/NULL-gender rate regression from a
// logged warning to a validation failure; the hard coverage/duplicate-key
// thresholds below always fail regardless of Strict.
type CoverageThresholds struct {
	TeamCoverageMin  float64
	MatchCoverageMin float64
	KeyCoverageMin   float64
	Strict           bool
}

// CoverageReport is the measured state of a completed rebuild run.
type CoverageReport struct {
	ProductionTeams             int
	RebuildTeams                int
	ProductionMatches           int
	RebuildMatches              int
	ProductionKeys              int
	RebuildKeys                 int
	DuplicateKeyGroups          int
	TeamCoverage                float64
	MatchCoverage               float64
	KeyCoverage                 float64
	ProductionBirthYearNullRate float64
	RebuildBirthYearNullRate    float64
	ProductionGenderUnknownRate float64
	RebuildGenderUnknownRate    float64
	Passed                      bool
	Failures                    []string
	Warnings                    []string
}

// Validate implements validate_rebuild(): measures coverage ratios between
// the shadow rebuild tables and production, and checks for duplicate keys.
func Validate(ctx context.Context, pool *pgxpool.Pool, thresholds CoverageThresholds) (CoverageReport, error) {
	var r CoverageReport

	if err := scanCount(ctx, pool, "SELECT COUNT(*) FROM teams_v2", &r.ProductionTeams); err != nil {
		return r, err
	}
	if err := scanCount(ctx, pool, "SELECT COUNT(*) FROM teams_v2_rebuild", &r.RebuildTeams); err != nil {
		return r, err
	}
	if err := scanCount(ctx, pool, "SELECT COUNT(*) FROM matches_v2 WHERE deleted_at IS NULL", &r.ProductionMatches); err != nil {
		return r, err
	}
	if err := scanCount(ctx, pool, "SELECT COUNT(*) FROM matches_v2_rebuild", &r.RebuildMatches); err != nil {
		return r, err
	}
	if err := scanCount(ctx, pool, "SELECT COUNT(DISTINCT source_match_key) FROM matches_v2", &r.ProductionKeys); err != nil {
		return r, err
	}
	if err := scanCount(ctx, pool, "SELECT COUNT(DISTINCT source_match_key) FROM matches_v2_rebuild", &r.RebuildKeys); err != nil {
		return r, err
	}
	if err := scanCount(ctx, pool, `
		SELECT COUNT(*) FROM (
			SELECT source_match_key FROM matches_v2_rebuild
			GROUP BY source_match_key HAVING COUNT(*) > 1
		) dup
	`, &r.DuplicateKeyGroups); err != nil {
		return r, err
	}

	var prodNullBirthYear, rebuildNullBirthYear, prodUnknownGender, rebuildUnknownGender int
	if err := scanCount(ctx, pool, "SELECT COUNT(*) FROM teams_v2 WHERE birth_year IS NULL", &prodNullBirthYear); err != nil {
		return r, err
	}
	if err := scanCount(ctx, pool, "SELECT COUNT(*) FROM teams_v2_rebuild WHERE birth_year IS NULL", &rebuildNullBirthYear); err != nil {
		return r, err
	}
	if err := scanCount(ctx, pool, "SELECT COUNT(*) FROM teams_v2 WHERE gender = 'unknown'", &prodUnknownGender); err != nil {
		return r, err
	}
	if err := scanCount(ctx, pool, "SELECT COUNT(*) FROM teams_v2_rebuild WHERE gender = 'unknown'", &rebuildUnknownGender); err != nil {
		return r, err
	}

	r.TeamCoverage = ratio(r.RebuildTeams, r.ProductionTeams)
	r.MatchCoverage = ratio(r.RebuildMatches, r.ProductionMatches)
	r.KeyCoverage = ratio(r.RebuildKeys, r.ProductionKeys)
	r.ProductionBirthYearNullRate = ratio(prodNullBirthYear, r.ProductionTeams)
	r.RebuildBirthYearNullRate = ratio(rebuildNullBirthYear, r.RebuildTeams)
	r.ProductionGenderUnknownRate = ratio(prodUnknownGender, r.ProductionTeams)
	r.RebuildGenderUnknownRate = ratio(rebuildUnknownGender, r.RebuildTeams)

	r.Passed = true
	if r.TeamCoverage < thresholds.TeamCoverageMin {
		r.Passed = false
		r.Failures = append(r.Failures, fmt.Sprintf("team coverage %.4f below threshold %.4f", r.TeamCoverage, thresholds.TeamCoverageMin))
	}
	if r.MatchCoverage < thresholds.MatchCoverageMin {
		r.Passed = false
		r.Failures = append(r.Failures, fmt.Sprintf("match coverage %.4f below threshold %.4f", r.MatchCoverage, thresholds.MatchCoverageMin))
	}
	if r.KeyCoverage < thresholds.KeyCoverageMin {
		r.Passed = false
		r.Failures = append(r.Failures, fmt.Sprintf("source_match_key coverage %.4f below threshold %.4f", r.KeyCoverage, thresholds.KeyCoverageMin))
	}
	if r.DuplicateKeyGroups > 0 {
		r.Passed = false
		r.Failures = append(r.Failures, fmt.Sprintf("%d duplicate source_match_key groups in rebuild", r.DuplicateKeyGroups))
	}
	if r.RebuildBirthYearNullRate > r.ProductionBirthYearNullRate {
		msg := fmt.Sprintf("birth_year NULL rate regressed: production %.4f, rebuild %.4f",
			r.ProductionBirthYearNullRate, r.RebuildBirthYearNullRate)
		if thresholds.Strict {
			r.Passed = false
			r.Failures = append(r.Failures, msg)
		} else {
			r.Warnings = append(r.Warnings, msg)
		}
	}
	if r.RebuildGenderUnknownRate > r.ProductionGenderUnknownRate {
		msg := fmt.Sprintf("gender unknown rate regressed: production %.4f, rebuild %.4f",
			r.ProductionGenderUnknownRate, r.RebuildGenderUnknownRate)
		if thresholds.Strict {
			r.Passed = false
			r.Failures = append(r.Failures, msg)
		} else {
			r.Warnings = append(r.Warnings, msg)
		}
	}

	metrics.RebuildCoverageRatio.WithLabelValues("teams").Set(r.TeamCoverage)
	metrics.RebuildCoverageRatio.WithLabelValues("matches").Set(r.MatchCoverage)
	metrics.RebuildCoverageRatio.WithLabelValues("source_match_key").Set(r.KeyCoverage)

	return r, nil
}

func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		if numerator == 0 {
			return 1
		}
		return 0
	}
	return float64(numerator) / float64(denominator)
}

func scanCount(ctx context.Context, pool *pgxpool.Pool, query string, dest *int) error {
	if err := pool.QueryRow(ctx, query).Scan(dest); err != nil {
		return fmt.Errorf("rebuild coverage query failed: %w", err)
	}
	return nil
}
