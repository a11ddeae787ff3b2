package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/jwebster45206/abandoned-sites/internal/config"
	"github.com/jwebster45206/abandoned-sites/internal/logger"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	var (
		style string
		width int
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one location with its history and stories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid location id %q", args[0])
			}

			cfg := config.Load()
			a, err := openApp(cmd.Context(), cfg, logger.Setup(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()

			loc, err := a.catalog.Location(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("location %d: %w", id, err)
			}

			opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
			if style == "auto" {
				opts = append(opts, glamour.WithAutoStyle())
			} else {
				opts = append(opts, glamour.WithStandardStyle(style))
			}
			r, err := glamour.NewTermRenderer(opts...)
			if err != nil {
				return fmt.Errorf("failed to create renderer: %w", err)
			}

			out, err := r.Render(locationMarkdown(*loc))
			if err != nil {
				return fmt.Errorf("failed to render location: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "auto", "glamour style: auto, dark, light, notty, ...")
	cmd.Flags().IntVar(&width, "width", 80, "wrap width")
	return cmd
}

func locationMarkdown(loc catalog.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", loc.Title, loc.Year)
	fmt.Fprintf(&b, "*%s · %s · danger %d/%d*\n\n", loc.Type.Label(), loc.Difficulty.Label(), loc.Danger, catalog.MaxDanger)
	if loc.RatingsCount > 0 {
		fmt.Fprintf(&b, "Rating **%.1f** from %d votes\n\n", loc.Rating, loc.RatingsCount)
	} else {
		b.WriteString("Not rated yet\n\n")
	}
	b.WriteString(loc.Description + "\n\n")

	b.WriteString("## History\n\n")
	b.WriteString(loc.History + "\n\n")

	fmt.Fprintf(&b, "## Stories (%d)\n\n", len(loc.Stories))
	if len(loc.Stories) == 0 {
		b.WriteString("No stories yet.\n")
	}
	for _, s := range loc.Stories {
		fmt.Fprintf(&b, "**%s** · %s\n\n", s.Author, s.Date)
		fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(s.Text, "\n", "\n> "))
		if attachments := describeAttachments(s); attachments != "" {
			b.WriteString("*" + attachments + "*\n\n")
		}
	}
	return b.String()
}

func describeAttachments(s catalog.Story) string {
	var parts []string
	if n := len(s.Images); n > 0 {
		var size int64
		for _, img := range s.Images {
			size += img.Size
		}
		label := "photos"
		if n == 1 {
			label = "photo"
		}
		parts = append(parts, fmt.Sprintf("%d %s, %s", n, label, humanize.Bytes(uint64(size))))
	}
	if s.Video != nil {
		parts = append(parts, fmt.Sprintf("video %s, %s", s.Video.Name, humanize.Bytes(uint64(s.Video.Size))))
	}
	return strings.Join(parts, "; ")
}
