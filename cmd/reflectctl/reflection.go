package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/pollclient"
	"github.com/yungbote/consciousness-backend/internal/services"
)

var (
	reflectionIn   services.ReflectionInput
	reflectionFile string
	submitNoWait   bool

	profileIn   services.ProfileInput
	profileFile string

	waitAttempts     int
	waitReflectionID string
)

func init() {
	f := submitCmd.Flags()
	f.StringVar(&reflectionFile, "file", "", "read answers from a JSON file (- for stdin)")
	f.StringVar(&reflectionIn.DaySummary, "day-summary", "", "how the day went")
	f.StringVar(&reflectionIn.SocialMediaTime, "social-media", "", "time spent on social media")
	f.StringVar(&reflectionIn.TruthfulnessKindness, "truthfulness", "", "truthfulness and kindness")
	f.StringVar(&reflectionIn.ConsciousActions, "conscious-actions", "", "conscious actions taken")
	f.StringVar(&reflectionIn.OverthinkingStress, "overthinking", "", "overthinking or stress")
	f.StringVar(&reflectionIn.GratitudeExpression, "gratitude", "", "gratitude expressed")
	f.StringVar(&reflectionIn.ProudMoment, "proud-moment", "", "a moment you are proud of")
	f.BoolVar(&submitNoWait, "no-wait", false, "return right after the reflection is stored")
	f.IntVar(&waitAttempts, "attempts", pollclient.DefaultMaxAttempts, "polls before giving up on the analysis")

	pf := profileCmd.Flags()
	pf.StringVar(&profileFile, "file", "", "read the profile from a JSON file (- for stdin)")
	pf.StringVar(&profileIn.SelfIntroduction, "intro", "", "self introduction")
	pf.StringVar(&profileIn.GoodQualities, "good", "", "good qualities")
	pf.StringVar(&profileIn.BadQualities, "bad", "", "bad qualities")
	pf.StringVar(&profileIn.LifeGoals, "goals", "", "life goals")
	pf.StringVar(&profileIn.Challenges, "challenges", "", "current challenges")
	pf.StringVar(&profileIn.AdditionalInfo, "additional", "", "anything else")

	waitCmd.Flags().IntVar(&waitAttempts, "attempts", pollclient.DefaultMaxAttempts, "polls before giving up")
	waitCmd.Flags().StringVar(&waitReflectionID, "reflection", "", "wait for the analysis of this reflection id")
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit today's reflection and wait for its analysis",
	Long: `Submit today's reflection. Answers come from flags or from a JSON file with
the same field names the API accepts. Unless --no-wait is given, the command
then polls for the analysis and prints it.

Examples:
  reflectctl submit --file today.json
  reflectctl submit --day-summary "Calm" --social-media "20 min" ...`,
	RunE: runSubmit,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Create or replace your profile",
	RunE:  runProfile,
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the most recent analysis",
	RunE:  runLatest,
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Poll until an analysis is available",
	RunE:  runWait,
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if reflectionFile != "" {
		if err := readJSON(reflectionFile, &reflectionIn); err != nil {
			return err
		}
	}
	c, err := connect(ctx)
	if err != nil {
		return err
	}
	submitted, err := c.SubmitReflection(ctx, reflectionIn)
	if err != nil {
		return fmt.Errorf("submit reflection: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Reflection %s stored for %s\n", submitted.ID, submitted.ReflectionDate)
	if submitNoWait {
		return nil
	}
	return waitAndPrint(ctx, cmd, c, submitted.ID)
}

func runProfile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if profileFile != "" {
		if err := readJSON(profileFile, &profileIn); err != nil {
			return err
		}
	}
	c, err := connect(ctx)
	if err != nil {
		return err
	}
	if err := c.SaveProfile(ctx, profileIn); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Profile saved")
	return nil
}

func runLatest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c, err := connect(ctx)
	if err != nil {
		return err
	}
	a, err := c.Latest(ctx)
	if err != nil {
		return fmt.Errorf("latest analysis: %w", err)
	}
	if a == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "No analysis yet")
		return nil
	}
	return printAnalysis(cmd, a)
}

func runWait(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	var want uuid.UUID
	if waitReflectionID != "" {
		id, err := uuid.Parse(waitReflectionID)
		if err != nil {
			return fmt.Errorf("invalid --reflection: %w", err)
		}
		want = id
	}
	c, err := connect(ctx)
	if err != nil {
		return err
	}
	return waitAndPrint(ctx, cmd, c, want)
}

func waitAndPrint(ctx context.Context, cmd *cobra.Command, c *pollclient.Client, reflectionID uuid.UUID) error {
	p := pollclient.NewPoller(cliLogger())
	p.MaxAttempts = waitAttempts
	p.WantReflectionID = reflectionID

	res, err := p.Wait(ctx, c)
	if err != nil {
		return err
	}
	if !res.Ready() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Analysis still pending after %d attempts; try `reflectctl latest` later\n", res.Attempts)
		return nil
	}
	return printAnalysis(cmd, res.Analysis)
}

func printAnalysis(cmd *cobra.Command, a *types.AnalysisView) error {
	if outJSON {
		return printJSON(a)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Analysis for %s\n\n", a.ReflectionDate)
	fmt.Fprintf(out, "%s\n\nRecommendations\n%s\n\nMotivation\n%s\n", a.AnalysisText, a.Recommendations, a.MotivationalMessage)
	return nil
}

func readJSON(path string, dst any) error {
	f := os.Stdin
	if path != "-" {
		opened, err := os.Open(path)
		if err != nil {
			return err
		}
		defer opened.Close()
		f = opened
	}
	if err := json.NewDecoder(f).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
