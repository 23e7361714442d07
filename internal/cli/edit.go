package cli

import (
	"context"
	"errors"
	"os"

	"github.com/pogibrader/noted/internal/posts"
)

// Edit prompts for an existing note id and new field values. Empty input
// keeps the current value; the attachment is preserved unless a new one is
// picked.
func (a *App) Edit(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter note id to edit", os.Stdout)
	if err != nil {
		return err
	}

	current, ok := a.findLocal(id)
	if !ok {
		printlnFn("No note with id", id, "- run 'list' first.")
		return nil
	}

	title, err := GetSimpleText(a.reader, "New title (empty to keep \""+current.Title+"\")", os.Stdout)
	if err != nil {
		return err
	}
	if title != "" {
		current.Title = title
	}

	description, err := GetMultiline(a.reader, "New description (empty to keep current)", os.Stdout)
	if err != nil {
		return err
	}
	if description != "" {
		current.Description = description
	}

	att, err := a.promptAttachment()
	if err != nil {
		return err
	}

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	if _, err := a.repo.Update(opCtx, current, att); err != nil {
		printlnFn(mutationMessage(err))
		return err
	}
	printlnFn("Updated note", current.ID)
	return nil
}

func (a *App) findLocal(id string) (posts.Post, bool) {
	for _, p := range a.repo.Posts() {
		if p.ID == id {
			return p, true
		}
	}
	return posts.Post{}, false
}

// mutationMessage turns a repository error into a line for the user.
func mutationMessage(err error) string {
	var ve *posts.ValidationError
	if errors.As(err, &ve) {
		return "The " + ve.Field + " cannot be empty."
	}
	if errors.Is(err, posts.ErrBusy) {
		return "Previous change is still in progress, try again."
	}
	return "Error: " + err.Error()
}
