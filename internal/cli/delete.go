package cli

import (
	"context"
	"os"
)

// Delete prompts for a note id and removes it. The local list changes only
// after the backend confirms.
func (a *App) Delete(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter note id to delete", os.Stdout)
	if err != nil {
		return err
	}
	if _, ok := a.findLocal(id); !ok {
		printlnFn("No note with id", id, "- run 'list' first.")
		return nil
	}

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	if err := a.repo.Delete(opCtx, id); err != nil {
		printlnFn(mutationMessage(err))
		return err
	}
	printlnFn("Deleted note", id)
	return nil
}
