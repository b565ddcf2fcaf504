package rules

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sigma "github.com/bradleyjkemp/sigma-go"
	sigmaevaluator "github.com/bradleyjkemp/sigma-go/evaluator"

	"logwatch/pkg/models"
)

// SigmaLoadStats tracks the number of loaded and skipped rules.
type SigmaLoadStats struct {
	TotalFiles        int
	Loaded            int
	SkippedComplex    int
	SkippedDatasource int
	SkippedInvalid    int
}

type compiledSigmaRule struct {
	rule sigma.Rule
	eval *sigmaevaluator.RuleEvaluator
	tag  string
}

// SigmaEngine evaluates webserver Sigma rules against individual records.
type SigmaEngine struct {
	rules []compiledSigmaRule
	ctx   context.Context
}

// NewSigmaEngine loads Sigma rules from a file or directory and compiles evaluators.
// Rules for other log sources or with aggregations are skipped and counted in stats.
func NewSigmaEngine(path string) (*SigmaEngine, SigmaLoadStats, error) {
	var stats SigmaLoadStats

	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, stats, fmt.Errorf("resolve rule path: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, stats, fmt.Errorf("stat rule path: %w", err)
	}

	files := make([]string, 0, 64)
	if info.IsDir() {
		err = filepath.WalkDir(resolved, func(filePath string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !entry.IsDir() && isYAMLFile(filePath) {
				files = append(files, filePath)
			}
			return nil
		})
		if err != nil {
			return nil, stats, fmt.Errorf("walk rule directory: %w", err)
		}
	} else {
		if !isYAMLFile(resolved) {
			return nil, stats, fmt.Errorf("rule file must end with .yml or .yaml: %s", resolved)
		}
		files = append(files, resolved)
	}

	stats.TotalFiles = len(files)
	compiled := make([]compiledSigmaRule, 0, len(files))
	for _, ruleFile := range files {
		rule, err := parseSigmaRuleFile(ruleFile)
		if err != nil {
			stats.SkippedInvalid++
			continue
		}
		if !isWebserverCompatible(rule) {
			stats.SkippedDatasource++
			continue
		}
		if !isSingleRecordRule(rule) {
			stats.SkippedComplex++
			continue
		}

		compiled = append(compiled, compiledSigmaRule{
			rule: rule,
			eval: sigmaevaluator.ForRule(rule),
			tag:  ruleTag(rule),
		})
		stats.Loaded++
	}

	return &SigmaEngine{rules: compiled, ctx: context.Background()}, stats, nil
}

// Apply returns the tags of all rules matching rec.
func (e *SigmaEngine) Apply(rec models.Record) []string {
	if e == nil || len(e.rules) == 0 {
		return nil
	}

	event := sigmaEventFrom(rec)
	var out []string
	for _, rule := range e.rules {
		res, err := rule.eval.Matches(e.ctx, event)
		if err != nil {
			continue
		}
		if res.Match {
			out = append(out, rule.tag)
		}
	}
	return out
}

// Len returns the number of loaded rules.
func (e *SigmaEngine) Len() int {
	if e == nil {
		return 0
	}
	return len(e.rules)
}

func parseSigmaRuleFile(path string) (sigma.Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return sigma.Rule{}, fmt.Errorf("read sigma rule %s: %w", path, err)
	}
	rule, err := sigma.ParseRule(raw)
	if err != nil {
		return sigma.Rule{}, fmt.Errorf("parse sigma rule %s: %w", path, err)
	}
	return rule, nil
}

func isYAMLFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")
}

func isWebserverCompatible(rule sigma.Rule) bool {
	category := strings.ToLower(strings.TrimSpace(rule.Logsource.Category))
	product := strings.ToLower(strings.TrimSpace(rule.Logsource.Product))

	if category != "" && category != "webserver" {
		return false
	}
	switch product {
	case "", "apache", "nginx":
		return true
	default:
		return false
	}
}

func isSingleRecordRule(rule sigma.Rule) bool {
	if rule.Detection.Timeframe > 0 {
		return false
	}
	for _, cond := range rule.Detection.Conditions {
		if cond.Aggregation != nil {
			return false
		}
	}
	for _, search := range rule.Detection.Searches {
		if len(search.Keywords) > 0 || len(search.EventMatchers) == 0 {
			return false
		}
	}
	return true
}

// sigmaEventFrom exposes a record under the W3C field names used by
// webserver Sigma rules.
func sigmaEventFrom(rec models.Record) map[string]interface{} {
	method, uri := "", ""
	version := ""
	if fields := strings.Fields(rec.Request); len(fields) >= 2 {
		method, uri = fields[0], fields[1]
		if len(fields) > 2 {
			version = fields[2]
		}
	}
	stem, query, _ := strings.Cut(uri, "?")

	return map[string]interface{}{
		"c-ip":         rec.RemoteHost,
		"cs-username":  rec.AuthUser,
		"cs-method":    method,
		"cs-uri":       uri,
		"cs-uri-stem":  stem,
		"cs-uri-query": query,
		"cs-version":   version,
		"sc-status":    strconv.FormatUint(uint64(rec.Status), 10),
		"sc-bytes":     strconv.FormatUint(rec.Bytes, 10),
		"date":         rec.Date,
		"request":      rec.Request,
	}
}

func ruleTag(rule sigma.Rule) string {
	if id := strings.TrimSpace(rule.ID); id != "" {
		return id
	}
	return strings.TrimSpace(rule.Title)
}
