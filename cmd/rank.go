package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	service "github.com/okian/ranker/internal/app"
	"github.com/okian/ranker/internal/domain/model"
	"github.com/okian/ranker/internal/domain/ranking"
	"github.com/okian/ranker/pkg/logger"
)

// Output formats of the rank command.
const (
	outputTable = "table"
	outputJSON  = "json"
)

// ErrDecisionFile is returned for decision files that cannot be mapped onto
// a topic.
var ErrDecisionFile = errors.New("invalid decision file")

// decisionFile is the YAML document read by `ranker rank`. Scores are keyed
// by attribute name.
type decisionFile struct {
	Name       string                 `yaml:"name"`
	Attributes []model.AttributeInput `yaml:"attributes"`
	Subjects   []decisionSubject      `yaml:"subjects"`
}

type decisionSubject struct {
	Name   string                 `yaml:"name"`
	Scores map[string]model.Score `yaml:"scores"`
}

func newRankCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "rank FILE",
		Short: "Rank the subjects of a YAML decision file",
		Long: `Read a decision file, run it through the same validation and scoring as
the API, and print the ranking. Use "-" to read from stdin.

Example file:
  name: Laptop
  attributes:
    - {name: Price, importance: 5}
    - {name: Size, importance: 1}
  subjects:
    - name: A
      scores: {Price: 8, Size: 2}
    - name: B
      scores: {Price: 5, Size: 10}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := loadConfig(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := initLogging(ctx, cfg, cmd.ErrOrStderr()); err != nil {
				return err
			}

			d, err := readDecisionFile(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			topic, ranked, err := rankDecision(ctx, newService(cfg), d)
			if err != nil {
				return err
			}
			return printRanking(cmd.OutOrStdout(), output, topic, ranked)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table or json")
	return cmd
}

func readDecisionFile(path string, stdin io.Reader) (decisionFile, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return decisionFile{}, fmt.Errorf("open decision file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return parseDecision(r)
}

func parseDecision(r io.Reader) (decisionFile, error) {
	var d decisionFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return decisionFile{}, fmt.Errorf("%w: %w", ErrDecisionFile, err)
	}
	return d, nil
}

// rankDecision builds the decision through the mutation service and returns
// the stored topic and its ranking.
func rankDecision(ctx context.Context, svc *service.Service, d decisionFile) (model.Topic, []model.RankedResult, error) {
	if err := checkDecisionNames(d); err != nil {
		return model.Topic{}, nil, err
	}

	topic, err := svc.CompleteWizard(ctx, d.Name, d.Attributes)
	if err != nil {
		return model.Topic{}, nil, err
	}

	ids := make(map[string]string, len(topic.Attributes))
	for _, a := range topic.Attributes {
		ids[a.Name] = a.ID
	}

	for _, s := range d.Subjects {
		scores := make(map[string]model.Score, len(s.Scores))
		for name, score := range s.Scores {
			scores[ids[name]] = score
		}
		if _, err := svc.SubmitSubject(ctx, topic.ID, model.SubjectInput{Name: s.Name, Scores: scores}); err != nil {
			return model.Topic{}, nil, fmt.Errorf("subject %q: %w", s.Name, err)
		}
	}

	ranked, err := svc.Results(ctx, topic.ID)
	if err != nil {
		return model.Topic{}, nil, err
	}
	logger.Get().Debug(ctx, "decision ranked",
		logger.String("topic", topic.Name),
		logger.Int("subjects", len(ranked)),
	)
	return topic, ranked, nil
}

// checkDecisionNames rejects repeated attribute names and scores for
// attributes the file does not define, before anything is stored.
func checkDecisionNames(d decisionFile) error {
	names := make(map[string]struct{}, len(d.Attributes))
	for _, a := range d.Attributes {
		if _, dup := names[a.Name]; dup {
			return fmt.Errorf("%w: attribute %q is defined twice", ErrDecisionFile, a.Name)
		}
		names[a.Name] = struct{}{}
	}
	for _, s := range d.Subjects {
		for name := range s.Scores {
			if _, ok := names[name]; !ok {
				return fmt.Errorf("%w: subject %q scores unknown attribute %q", ErrDecisionFile, s.Name, name)
			}
		}
	}
	return nil
}

func printRanking(w io.Writer, format string, topic model.Topic, ranked []model.RankedResult) error {
	switch strings.ToLower(format) {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Topic   string               `json:"topic"`
			Results []model.RankedResult `json:"results"`
		}{Topic: topic.Name, Results: ranked})
	case outputTable, "":
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	fmt.Fprintf(w, "%s\n\n", topic.Name)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSUBJECT\tTOTAL\tWEIGHTED\t")
	for _, r := range ranked {
		marker := ""
		if r.IsWinner {
			marker = "winner"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", r.Rank, r.Subject.Name, r.TotalScore, r.WeightedScore, marker)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write ranking: %w", err)
	}
	if _, ok := ranking.Winner(ranked); !ok {
		fmt.Fprintln(w, "\nno winner declared")
	}
	return nil
}
