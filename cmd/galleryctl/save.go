package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/editor"

	"github.com/spf13/cobra"
)

type saveOptions struct {
	name     string
	gallery  string
	load     bool
	ids      []int64
	captions []string
	columns  int
	size     int
	link     string
	random   bool
	yes      bool
	stash    bool
}

func newSaveCmd(opts *globalOptions) *cobra.Command {
	so := &saveOptions{}

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a gallery, asking before an existing one is replaced",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(opts, func(client *editor.Client) error {
				prompter := &terminalPrompter{
					in:  bufio.NewReader(cmd.InOrStdin()),
					out: cmd.ErrOrStderr(),
					yes: so.yes,
				}
				session := editor.NewSession(client, prompter, editor.DefaultMessages())

				if err := so.apply(cmd, client, session); err != nil {
					return err
				}

				if so.stash {
					if err := session.Stash(cmd.Context()); err != nil {
						return err
					}
					printf(cmd, "draft stashed\n")
					return nil
				}

				saved, err := session.Save(cmd.Context())
				if err != nil {
					if errors.Is(err, editor.ErrDeclined) {
						printf(cmd, "not saved\n")
						return nil
					}
					return err
				}

				if opts.json {
					return writeJSON(cmd, saved)
				}
				printf(cmd, "saved gallery %d %q\n", saved.ID, saved.Name)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&so.name, "name", "", "gallery name")
	f.StringVar(&so.gallery, "gallery", "", "start from an existing gallery picked by name")
	f.BoolVar(&so.load, "load", false, "load the picked gallery's images before applying --ids")
	f.Int64SliceVar(&so.ids, "ids", nil, "attachment ids in display order")
	f.StringArrayVar(&so.captions, "caption", nil, "caption as <id>=<text>")
	f.IntVar(&so.columns, "columns", 0, "columns setting")
	f.IntVar(&so.size, "size", 0, "size setting")
	f.StringVar(&so.link, "link", "", "link setting")
	f.BoolVar(&so.random, "random", false, "random order setting")
	f.BoolVarP(&so.yes, "yes", "y", false, "replace without asking")
	f.BoolVar(&so.stash, "stash", false, "store as a draft instead of saving")

	return cmd
}

func (so *saveOptions) apply(cmd *cobra.Command, client *editor.Client, session *editor.Session) error {
	ctx := cmd.Context()

	if so.gallery != "" {
		if err := pickGallery(ctx, client, session, so.gallery, so.load); err != nil {
			return err
		}
	}

	if so.name != "" {
		session.SetName(so.name)
	}

	if len(so.ids) > 0 {
		if err := session.Load(ctx, so.ids); err != nil {
			return err
		}
	}

	for _, raw := range so.captions {
		id, text, err := parseCaption(raw)
		if err != nil {
			return err
		}
		if !session.SetCaption(id, text) {
			return fmt.Errorf("caption for %d: attachment is not in the gallery", id)
		}
	}

	var settings models.Settings
	flags := cmd.Flags()
	if flags.Changed("columns") {
		settings.Columns = &so.columns
	}
	if flags.Changed("size") {
		settings.Size = &so.size
	}
	if flags.Changed("link") {
		settings.Link = &so.link
	}
	if flags.Changed("random") {
		settings.Random = &so.random
	}
	if !settings.IsZero() {
		session.SetSettings(settings)
	}

	return nil
}

func pickGallery(ctx context.Context, client *editor.Client, session *editor.Session, name string, load bool) error {
	widget := editor.NewWidget(client, editor.DefaultMessages())
	widget.OnSelect(session.Bind)

	if err := widget.Type(ctx, name); err != nil {
		return err
	}
	widget.Wait()
	if err := widget.Err(); err != nil {
		return err
	}

	for _, r := range widget.Results() {
		if !strings.EqualFold(r.Name, name) {
			continue
		}

		picked, err := widget.Select(r.ID)
		if err != nil {
			return err
		}
		if load && picked.Count > 0 {
			return session.Load(ctx, picked.IDs)
		}
		return nil
	}

	return fmt.Errorf("gallery %q not found", name)
}

func parseCaption(raw string) (int64, string, error) {
	idPart, text, ok := strings.Cut(raw, "=")
	if !ok {
		return 0, "", fmt.Errorf("caption %q: want <id>=<text>", raw)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil || id < 1 {
		return 0, "", fmt.Errorf("caption %q: bad attachment id", raw)
	}

	return id, text, nil
}

// terminalPrompter answers session prompts on the terminal.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
	yes bool
}

func (p *terminalPrompter) Confirm(message string) bool {
	if p.yes {
		return true
	}

	fmt.Fprintf(p.out, "%s [y/N]: ", message)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (p *terminalPrompter) FocusName() {
	fmt.Fprintln(p.out, "gallery name is required, pass --name")
}

func (p *terminalPrompter) Alert(message string) {
	fmt.Fprintln(p.out, message)
}
