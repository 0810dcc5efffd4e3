package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/waterkeeper/internal/common"
	"github.com/dmitrijs2005/waterkeeper/internal/views"
)

func (a *App) requireAdmin() error {
	if !a.isAdmin() {
		return fmt.Errorf("%w: administrator login required", common.ErrAuth)
	}
	return nil
}

func fileArg(cmd string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: usage: %s <file>", common.ErrValidation, cmd)
	}
	return args[0], nil
}

// Users prints the admin overview: user count, credentials and lifetime
// totals in stored order.
func (a *App) Users(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	list, err := a.profiles.List(ctx)
	if err != nil {
		return err
	}
	renderAdminOverview(a.out, views.BuildAdminOverview(list, a.profiles.Today()))
	return nil
}

// Export writes the collection, in its stored JSON shape, to a file.
func (a *App) Export(ctx context.Context, args []string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	path, err := fileArg("export", args)
	if err != nil {
		return err
	}

	data, err := a.profiles.Export(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.println(fmt.Sprintf("Exported to %s.", path))
	return nil
}

// Import replaces the whole collection with the contents of a file.
func (a *App) Import(ctx context.Context, args []string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	path, err := fileArg("import", args)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	ok, err := GetConfirmation(a.reader, "ADMIN: Replace all users with the file contents?", a.out)
	if err != nil || !ok {
		return err
	}

	n, err := a.profiles.Import(ctx, data)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Imported %d users.", n))
	return nil
}
