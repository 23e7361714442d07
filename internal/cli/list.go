package cli

import (
	"context"
	"fmt"
)

// List refreshes the notes from the backend and prints them, newest first.
func (a *App) List(ctx context.Context) error {
	u := a.auth.User()
	if u == nil {
		printlnFn("Not signed in.")
		return nil
	}

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	list, err := a.repo.List(opCtx, u.ID)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	if len(list) == 0 {
		printlnFn("No notes yet. Type 'add' to create one.")
		return nil
	}
	for _, p := range list {
		line := fmt.Sprintf("%s  %s  %s", p.ID, p.CreatedAt.Format("2006-01-02 15:04"), p.Title)
		if p.MediaURL != "" {
			line += fmt.Sprintf(" [%s]", p.MediaType)
		}
		printlnFn(line)
	}
	return nil
}
