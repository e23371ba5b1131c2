package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/runnerr0/recollect/internal/memory"
)

// Rollup thresholds: a period is consolidated only once it has enough
// child notes to be worth summarizing.
const (
	minDailiesPerWeek   = 3
	minWeekliesPerMonth = 2
	minMonthliesPerYear = 3
)

// chatClient is the slice of the LLM provider the rollups need.
type chatClient interface {
	Chat(ctx context.Context, system, user string, jsonMode bool) (string, error)
}

// retriever recalls stored memories from before a given instant, so a
// consolidation can contrast the period with what came before it.
type retriever interface {
	Query(ctx context.Context, text string, n int, before time.Time) ([]memory.Candidate, error)
}

// Rollup consolidates daily notes into weekly, weekly into monthly,
// and monthly into yearly reviews. The memory retriever is optional.
type Rollup struct {
	dir  string
	chat chatClient
	mem  retriever
}

func NewRollup(dir string, chat chatClient, mem retriever) *Rollup {
	return &Rollup{dir: dir, chat: chat, mem: mem}
}

// weekKey formats an ISO week identifier such as "2026-W09".
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// groupBy buckets notes by a key derived from their frontmatter date
// field. Notes with an unparseable date are skipped.
func groupBy(notes []Note, dateField string, keyFn func(time.Time) string) map[string][]Note {
	groups := map[string][]Note{}
	for _, n := range notes {
		raw := MetaDate(n.Meta, dateField)
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			log.WithField("path", n.Path).Warn("note has no usable date, skipping")
			continue
		}
		key := keyFn(t)
		groups[key] = append(groups[key], n)
	}
	return groups
}

func sortedKeys(groups map[string][]Note) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const weeklySystemPrompt = `You are a reflective journaling assistant. You consolidate several daily logs into one weekly review written in the first person.`

const weeklyPrompt = `Below are daily journal entries from one week. Write a weekly review in markdown with these sections:

## Highlights
The two or three most significant things that happened.

## Patterns
Recurring themes, habits, or working rhythms visible across the days.

## Carried Forward
Open threads or intentions worth carrying into next week.

Daily entries:

%s`

type weeklyFrontmatter struct {
	Week      string   `yaml:"week"`
	Tags      []string `yaml:"tags,flow"`
	StartDate string   `yaml:"start_date"`
	EndDate   string   `yaml:"end_date"`
	Children  []string `yaml:"children,flow"`
}

// CreateWeekly consolidates complete weeks of daily notes. Weeks that
// already have a review, or fewer dailies than the threshold, are left
// alone. Returns the paths of the reviews it wrote.
func (r *Rollup) CreateWeekly(ctx context.Context) ([]string, error) {
	dailies, err := ListNotes(r.dir, "_daily.md")
	if err != nil {
		return nil, err
	}

	groups := groupBy(dailies, "date", weekKey)
	var written []string
	for _, week := range sortedKeys(groups) {
		notes := groups[week]
		if len(notes) < minDailiesPerWeek {
			log.WithField("week", week).Debugf("only %d dailies, skipping", len(notes))
			continue
		}
		path := filepath.Join(r.dir, week+"_weekly.md")
		if exists(path) {
			continue
		}

		var combined strings.Builder
		dates := make([]string, 0, len(notes))
		for _, n := range notes {
			dates = append(dates, MetaDate(n.Meta, "date"))
			combined.WriteString(n.Body)
			combined.WriteString("\n\n")
		}

		review, err := r.chat.Chat(ctx, weeklySystemPrompt, fmt.Sprintf(weeklyPrompt, combined.String()), false)
		if err != nil {
			return written, fmt.Errorf("weekly review for %s: %w", week, err)
		}

		fm := weeklyFrontmatter{
			Week:      week,
			Tags:      []string{"weekly", "recollect"},
			StartDate: dates[0],
			EndDate:   dates[len(dates)-1],
			Children:  dates,
		}
		body := fmt.Sprintf("# Weekly Review: %s\n\n%s\n", week, review)
		if err := writeNote(path, fm, body); err != nil {
			return written, err
		}
		log.WithField("week", week).Info("saved weekly review")
		written = append(written, path)
	}
	return written, nil
}

const monthlySystemPrompt = `You are a reflective journaling assistant. You consolidate weekly reviews into one monthly review written in the first person, comparing the month against earlier memories when provided.`

const monthlyPrompt = `Below are weekly reviews from one month%s. Write a monthly review in markdown with these sections:

## Overview
What defined this month.

## Growth
Skills developed, challenges overcome, and how this compares with the past.

## Direction
Where the momentum of this month points next.

Weekly reviews:

%s`

type monthlyFrontmatter struct {
	Month     string   `yaml:"month"`
	Tags      []string `yaml:"tags,flow"`
	StartDate string   `yaml:"start_date"`
	EndDate   string   `yaml:"end_date"`
	Weeks     []string `yaml:"weeks,flow"`
}

// CreateMonthly consolidates weekly reviews into monthly reviews. When
// a memory retriever is configured, memories from before the month are
// folded into the prompt so the review can note long-term change.
func (r *Rollup) CreateMonthly(ctx context.Context) ([]string, error) {
	weeklies, err := ListNotes(r.dir, "_weekly.md")
	if err != nil {
		return nil, err
	}

	groups := groupBy(weeklies, "start_date", func(t time.Time) string {
		return t.Format("2006-01")
	})
	var written []string
	for _, month := range sortedKeys(groups) {
		notes := groups[month]
		if len(notes) < minWeekliesPerMonth {
			log.WithField("month", month).Debugf("only %d weeklies, skipping", len(notes))
			continue
		}
		path := filepath.Join(r.dir, month+"_monthly.md")
		if exists(path) {
			continue
		}

		monthStart, err := time.Parse("2006-01", month)
		if err != nil {
			return written, fmt.Errorf("parse month %s: %w", month, err)
		}

		var combined strings.Builder
		weeks := make([]string, 0, len(notes))
		for _, n := range notes {
			weeks = append(weeks, MetaString(n.Meta, "week"))
			combined.WriteString(n.Body)
			combined.WriteString("\n\n")
		}

		past := r.pastContext(ctx, "skills growth challenges achievements", 5, monthStart)
		review, err := r.chat.Chat(ctx, monthlySystemPrompt, fmt.Sprintf(monthlyPrompt, past, combined.String()), false)
		if err != nil {
			return written, fmt.Errorf("monthly review for %s: %w", month, err)
		}

		fm := monthlyFrontmatter{
			Month:     month,
			Tags:      []string{"monthly", "recollect"},
			StartDate: MetaDate(notes[0].Meta, "start_date"),
			EndDate:   MetaDate(notes[len(notes)-1].Meta, "end_date"),
			Weeks:     weeks,
		}
		body := fmt.Sprintf("# Monthly Review: %s\n\n%s\n", month, review)
		if err := writeNote(path, fm, body); err != nil {
			return written, err
		}
		log.WithField("month", month).Info("saved monthly review")
		written = append(written, path)
	}
	return written, nil
}

const yearlySystemPrompt = `You are a reflective journaling assistant. You consolidate monthly reviews into one yearly retrospective written in the first person.`

const yearlyPrompt = `Below are monthly reviews from one year%s. Write a yearly retrospective in markdown with these sections:

## The Year in Brief
The arc of the year in a few paragraphs.

## Transformation
How this year changed things compared to where it started.

## Milestones
The achievements that mattered most.

Monthly reviews:

%s`

type yearlyFrontmatter struct {
	Year   string   `yaml:"year"`
	Tags   []string `yaml:"tags,flow"`
	Months []string `yaml:"months,flow"`
}

// CreateYearly consolidates monthly reviews into yearly retrospectives.
func (r *Rollup) CreateYearly(ctx context.Context) ([]string, error) {
	monthlies, err := ListNotes(r.dir, "_monthly.md")
	if err != nil {
		return nil, err
	}

	groups := map[string][]Note{}
	for _, n := range monthlies {
		month := MetaString(n.Meta, "month")
		if len(month) < 4 {
			log.WithField("path", n.Path).Warn("note has no usable month, skipping")
			continue
		}
		year := month[:4]
		groups[year] = append(groups[year], n)
	}

	var written []string
	for _, year := range sortedKeys(groups) {
		notes := groups[year]
		if len(notes) < minMonthliesPerYear {
			log.WithField("year", year).Debugf("only %d monthlies, skipping", len(notes))
			continue
		}
		path := filepath.Join(r.dir, year+"_yearly.md")
		if exists(path) {
			continue
		}

		yearStart, err := time.Parse("2006", year)
		if err != nil {
			return written, fmt.Errorf("parse year %s: %w", year, err)
		}

		var combined strings.Builder
		months := make([]string, 0, len(notes))
		for _, n := range notes {
			months = append(months, MetaString(n.Meta, "month"))
			combined.WriteString(n.Body)
			combined.WriteString("\n\n")
		}

		past := r.pastContext(ctx, "transformation major achievements growth", 7, yearStart)
		review, err := r.chat.Chat(ctx, yearlySystemPrompt, fmt.Sprintf(yearlyPrompt, past, combined.String()), false)
		if err != nil {
			return written, fmt.Errorf("yearly review for %s: %w", year, err)
		}

		fm := yearlyFrontmatter{
			Year:   year,
			Tags:   []string{"yearly", "recollect"},
			Months: months,
		}
		body := fmt.Sprintf("# Yearly Retrospective: %s\n\n%s\n", year, review)
		if err := writeNote(path, fm, body); err != nil {
			return written, err
		}
		log.WithField("year", year).Info("saved yearly retrospective")
		written = append(written, path)
	}
	return written, nil
}

// pastContext formats memories from before the period start into a
// prompt fragment. Retrieval failures degrade to no context.
func (r *Rollup) pastContext(ctx context.Context, query string, n int, before time.Time) string {
	if r.mem == nil {
		return ""
	}
	candidates, err := r.mem.Query(ctx, query, n, before)
	if err != nil {
		log.WithError(err).Warn("memory retrieval failed, consolidating without past context")
		return ""
	}
	if len(candidates) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(", with memories from before this period for contrast:\n\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s\n", c.Content)
	}
	return b.String()
}
