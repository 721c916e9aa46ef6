// cmd/doc-chunker/init.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphy/doc-chunker/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [repo-path]",
	Short: "Write the default config and, for a repository, its chunking config",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	globalPath := configPath
	if globalPath == "" {
		globalPath = config.DefaultPath()
	}
	if _, err := os.Stat(globalPath); err == nil {
		fmt.Printf("Config already exists at %s\n", globalPath)
	} else {
		if err := config.DefaultConfig().Save(globalPath); err != nil {
			return err
		}
		fmt.Printf("Created %s\n", globalPath)
	}

	if len(args) == 0 {
		return nil
	}

	absPath, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	configFile := filepath.Join(absPath, config.RepoConfigFile)
	if _, err := os.Stat(configFile); err == nil {
		fmt.Printf("Config already exists at %s\n", configFile)
		return nil
	}

	repoName := filepath.Base(absPath)
	repoCfg := map[string]interface{}{
		"doc-chunker": config.RepoConfig{
			Name:    repoName,
			Include: detectIncludes(absPath),
			Exclude: []string{},
		},
	}

	data, err := yaml.Marshal(repoCfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", configFile)
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Review and customize the config file\n")
	fmt.Printf("  2. Run: doc-chunker index %s\n", args[0])

	return nil
}

// detectIncludes returns globs for the supported languages present near the
// repository root, or every supported language when none is found.
func detectIncludes(repoPath string) []string {
	includes := []string{}

	if hasFiles(repoPath, "*.rs") {
		includes = append(includes, "**/*.rs")
	}
	if hasFiles(repoPath, "*.py") {
		includes = append(includes, "**/*.py")
	}
	if hasFiles(repoPath, "*.js") || hasFiles(repoPath, "*.jsx") {
		includes = append(includes, "**/*.js", "**/*.jsx")
	}
	if hasFiles(repoPath, "*.ts") || hasFiles(repoPath, "*.tsx") {
		includes = append(includes, "**/*.ts", "**/*.tsx")
	}

	if len(includes) == 0 {
		includes = config.DefaultConfig().Indexing.Include
	}

	return includes
}

func hasFiles(dir string, pattern string) bool {
	matches, _ := filepath.Glob(filepath.Join(dir, pattern))
	if len(matches) > 0 {
		return true
	}
	// Check two levels down, which covers src/ and src/<module>/.
	for _, depth := range []string{"*", filepath.Join("*", "*")} {
		matches, _ = filepath.Glob(filepath.Join(dir, depth, pattern))
		if len(matches) > 0 {
			return true
		}
	}
	return false
}
