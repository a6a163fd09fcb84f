package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"veritas-hq/aegis/pkg/cli"
	"veritas-hq/aegis/pkg/policy"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Policy management commands",
	Long:  `Validate and inspect declarative policy seed files.`,
}

var lintFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var policyLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate policy seed files",
	Long: `Validate policy seed files without touching the database.

The lint command parses seed files and checks each policy definition:
  - YAML syntax
  - Required fields (name, condition_type)
  - Recognized scope values
  - Organization scoping rules
  - Unknown condition types are reported as warnings; they are legal but
    inert at enforcement time

Examples:
  # Lint a single file
  aegis policy lint --file policies.yaml

  # Lint a directory
  aegis policy lint --dir policies/

  # Strict mode (warnings as errors)
  aegis policy lint --file policies.yaml --strict

  # JSON output for CI/CD
  aegis policy lint --file policies.yaml --format json`,
	RunE: lintSeedFiles,
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyLintCmd)

	policyLintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "seed file to validate")
	policyLintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of seed files")
	policyLintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	policyLintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the validation result for one seed file.
type LintResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Policies int      `json:"policies"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func lintSeedFiles(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list seed files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no seed files found")
	}

	results := make([]LintResult, 0, len(files))
	failed := false
	for _, file := range files {
		result := lintSeedFile(file)
		if !result.Valid || (lintFlags.strict && len(result.Warnings) > 0) {
			failed = true
		}
		results = append(results, result)
	}

	if lintFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, results); err != nil {
			return err
		}
	} else {
		printLintResults(results)
	}

	if failed {
		return cli.NewCommandError("policy lint", fmt.Errorf("validation failed"))
	}
	return nil
}

func lintSeedFile(path string) LintResult {
	result := LintResult{File: path, Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("read: %v", err))
		return result
	}

	var sf policy.SeedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("parse: %v", err))
		return result
	}

	result.Policies = len(sf.Policies)
	known := policy.Predicates()
	seen := make(map[string]bool, len(sf.Policies))

	for i, sp := range sf.Policies {
		where := fmt.Sprintf("policies[%d]", i)
		if sp.Name != "" {
			where = fmt.Sprintf("policy %q", sp.Name)
		}

		if sp.Name == "" {
			result.Errors = append(result.Errors, where+": name must not be empty")
		} else if seen[sp.Name] {
			result.Errors = append(result.Errors, where+": duplicate name in seed file")
		}
		seen[sp.Name] = true

		if sp.ConditionType == "" {
			result.Errors = append(result.Errors, where+": condition_type must not be empty")
		} else if _, ok := known[policy.ConditionType(sp.ConditionType)]; !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: unrecognized condition_type %q will never block", where, sp.ConditionType))
		}

		scope := policy.Scope(sp.Scope)
		if sp.Scope != "" && !scope.Valid() {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: unrecognized scope %q", where, sp.Scope))
		}
		if scope == policy.ScopeOrganization && sp.OrganizationID == nil {
			result.Errors = append(result.Errors, where+": organization_id required for organization scope")
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func printLintResults(results []LintResult) {
	for _, r := range results {
		if r.Valid {
			fmt.Printf("✓ %s (%d policies)\n", r.File, r.Policies)
		} else {
			fmt.Printf("✗ %s\n", r.File)
		}
		for _, e := range r.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		for _, w := range r.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
	}
}
