package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/feedsight/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the active rule table as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		classifier, err := loadClassifier(cmd)
		if err != nil {
			return err
		}
		out, err := rules.Marshal(classifier.Rules())
		if err != nil {
			return fmt.Errorf("encode rules: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

// loadClassifier builds the classifier from --rules, or the built-in table.
func loadClassifier(cmd *cobra.Command) (*rules.Classifier, error) {
	path, _ := cmd.Flags().GetString("rules")
	if path == "" {
		return rules.NewClassifier(nil), nil
	}
	table, err := rules.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return rules.NewClassifier(table), nil
}

func init() {
	rulesCmd.Flags().String("rules", "", "YAML rule file (default: built-in rules)")
}
