package cli

import (
	"context"
	"os"

	"github.com/pogibrader/noted/internal/media"
	"github.com/pogibrader/noted/internal/posts"
)

// Add prompts for a new note and creates it. An attachment is optional; the
// upload happens before the note is written, so a failed upload leaves
// nothing behind.
func (a *App) Add(ctx context.Context) error {
	u := a.auth.User()
	if u == nil {
		printlnFn("Not signed in.")
		return nil
	}

	title, err := GetSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Enter description", os.Stdout)
	if err != nil {
		return err
	}
	att, err := a.promptAttachment()
	if err != nil {
		return err
	}

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	p, err := a.repo.Create(opCtx, u.ID, posts.Draft{Title: title, Description: description}, att)
	if err != nil {
		printlnFn(mutationMessage(err))
		return err
	}
	printlnFn("Created note", p.ID)
	return nil
}

// promptAttachment asks for an optional local file and its kind. An empty
// path means no attachment.
func (a *App) promptAttachment() (*posts.Attachment, error) {
	path, err := GetSimpleText(a.reader, "Attachment path (empty for none)", os.Stdout)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}

	kindText, err := GetSimpleText(a.reader, "Kind: (i)mage or (v)ideo", os.Stdout)
	if err != nil {
		return nil, err
	}
	kind := media.KindImage
	if kindText == "v" || kindText == "video" {
		kind = media.KindVideo
	}
	return &posts.Attachment{LocalPath: path, Kind: kind}, nil
}
