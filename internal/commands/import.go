package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
	"github.com/ShaneMarusczak/budgetui/internal/importer"
	"github.com/ShaneMarusczak/budgetui/internal/service"
)

func newImportCommand(ctx context.Context, d Deps) *cobra.Command {
	var accountName, profileName string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a CSV file (auto-detects bank format)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(ctx, d, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], accountName, profileName)
		},
	}
	cmd.Flags().StringVar(&accountName, "account", "", "account to import into (default: the only account)")
	cmd.Flags().StringVar(&profileName, "profile", "", "named layout from the custom profile pack (skips detection)")

	return cmd
}

func runImport(ctx context.Context, d Deps, out, errOut io.Writer, path, accountName, profileName string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("File not found: %s", path)
	}

	preview, err := d.Import.LoadPreview(path)
	if err != nil {
		return err
	}
	detected := preview.Profile != nil
	profile := preview.Profile
	switch {
	case profileName != "":
		packs, err := importer.LoadProfiles(d.Cfg.Profiles.Path)
		if err != nil {
			return err
		}
		p := importer.FindProfile(packs, profileName)
		if p == nil {
			return fmt.Errorf("Profile '%s' not found in %s", profileName, d.Cfg.Profiles.Path)
		}
		// Pack profiles declare their own sign convention, so treat them
		// like a detected layout.
		profile, detected = p, true
		fmt.Fprintln(out, "Using profile: "+profile.Name)
	case detected:
		fmt.Fprintln(out, "Detected format: "+profile.Name)
	default:
		fmt.Fprintln(out, "Using default CSV profile (date=0, desc=1, amount=2)")
		profile = importer.DefaultProfile()
	}

	acct, err := resolveAccount(ctx, d, accountName)
	if err != nil {
		return err
	}
	service.ApplyAccount(profile, acct, detected)

	batch, err := d.Import.BuildBatch(preview.File.Rows, profile, acct.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Parsed %d transactions\n", len(batch))

	res, err := d.Import.Categorize(ctx, batch)
	if err != nil {
		return err
	}
	if len(res.Invalid) > 0 {
		fmt.Fprintln(errOut, service.InvalidRuleWarning(res.Invalid))
	}
	if res.RuleCount > 0 {
		fmt.Fprintf(out, "Auto-categorized %d/%d transactions\n", res.Categorized, res.Total)
	}

	commit, err := d.Import.Commit(ctx, batch, service.RunMeta{
		AccountID:   acct.ID,
		FileName:    filepath.Base(path),
		ProfileName: profile.Name,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, commit.Status)
	return nil
}

// resolveAccount picks the target account: the named one when --account was
// given, the only account when exactly one exists, otherwise an error
// listing the choices.
func resolveAccount(ctx context.Context, d Deps, name string) (repository.Account, error) {
	accounts, err := d.Accounts.List(ctx)
	if err != nil {
		return repository.Account{}, err
	}
	if name != "" {
		for _, a := range accounts {
			if strings.EqualFold(a.Name, name) {
				return a, nil
			}
		}
		return repository.Account{}, fmt.Errorf("Account '%s' not found", name)
	}
	switch len(accounts) {
	case 0:
		return repository.Account{}, fmt.Errorf("No accounts found. Create one first, or use --account <name>")
	case 1:
		return accounts[0], nil
	}
	lines := make([]string, len(accounts))
	for i, a := range accounts {
		lines[i] = fmt.Sprintf("  --account %q  (%s)", a.Name, a.AccountType)
	}
	return repository.Account{}, fmt.Errorf("Multiple accounts found. Use --account <name> to specify:\n%s",
		strings.Join(lines, "\n"))
}
