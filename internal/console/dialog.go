package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jwebster45206/abandoned-sites/internal/media"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
)

type dialogField int

const (
	fieldAuthor dialogField = iota
	fieldText
	fieldImages
	fieldVideo
	fieldCount
)

type imageReadMsg struct {
	seq   int
	index int
	media catalog.Media
	err   error
}

type videoReadMsg struct {
	seq   int
	media catalog.Media
	err   error
}

// storyDialog is the draft form for a new story. Media fields hold file
// paths; the files are read into the draft when the user presses enter on
// the field or publishes.
type storyDialog struct {
	locationID    int
	locationTitle string
	focus         dialogField

	author textinput.Model
	text   textarea.Model
	images textinput.Model
	video  textinput.Model

	draftImages   []catalog.Media
	imagePaths    string // paths draftImages were read from
	pendingImages string
	imageBatch    *media.Batch
	imageSeq      int

	draftVideo   *catalog.Media
	videoPath    string
	pendingVideo string
	videoLoading bool
	videoSeq     int

	submitAfterLoad bool
	submitting      bool
	err             string
}

func newStoryDialog(loc catalog.Location, width int) storyDialog {
	fieldWidth := width - 10
	if fieldWidth < 20 {
		fieldWidth = 20
	}

	author := textinput.New()
	author.Placeholder = "Your name"
	author.CharLimit = 60
	author.Width = fieldWidth
	author.Cursor.SetMode(cursor.CursorStatic)

	text := textarea.New()
	text.Placeholder = "What did you find there?"
	text.CharLimit = 4000
	text.ShowLineNumbers = false
	text.SetWidth(fieldWidth)
	text.SetHeight(5)
	text.Cursor.SetMode(cursor.CursorStatic)

	images := textinput.New()
	images.Placeholder = fmt.Sprintf("Up to %d photo paths, comma separated", catalog.MaxStoryImages)
	images.Width = fieldWidth
	images.Cursor.SetMode(cursor.CursorStatic)

	video := textinput.New()
	video.Placeholder = "Optional video path"
	video.Width = fieldWidth
	video.Cursor.SetMode(cursor.CursorStatic)

	d := storyDialog{
		locationID:    loc.ID,
		locationTitle: loc.Title,
		author:        author,
		text:          text,
		images:        images,
		video:         video,
	}
	d.setFocus(fieldAuthor)
	return d
}

func (d *storyDialog) setFocus(f dialogField) {
	d.focus = (f + fieldCount) % fieldCount
	d.author.Blur()
	d.text.Blur()
	d.images.Blur()
	d.video.Blur()
	switch d.focus {
	case fieldAuthor:
		d.author.Focus()
	case fieldText:
		d.text.Focus()
	case fieldImages:
		d.images.Focus()
	case fieldVideo:
		d.video.Focus()
	}
}

// updateFocused passes msg to whichever input has focus.
func (d *storyDialog) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch d.focus {
	case fieldAuthor:
		d.author, cmd = d.author.Update(msg)
	case fieldText:
		d.text, cmd = d.text.Update(msg)
	case fieldImages:
		d.images, cmd = d.images.Update(msg)
	case fieldVideo:
		d.video, cmd = d.video.Update(msg)
	}
	return cmd
}

func (d storyDialog) draft() catalog.StoryDraft {
	return catalog.StoryDraft{
		Author: d.author.Value(),
		Text:   d.text.Value(),
		Images: d.draftImages,
		Video:  d.draftVideo,
	}
}

func normalizedPaths(v string) string {
	return strings.Join(media.SplitPaths(v), ",")
}

func (d storyDialog) imagesStale() bool {
	return normalizedPaths(d.images.Value()) != d.imagePaths
}

func (d storyDialog) videoStale() bool {
	return strings.TrimSpace(d.video.Value()) != d.videoPath
}

func (d storyDialog) loading() bool {
	return (d.imageBatch != nil && !d.imageBatch.Complete()) || d.videoLoading
}

// loadImages issues one read per selected file. Results are coalesced by
// the batch; any earlier batch still in flight is superseded.
func (d *storyDialog) loadImages(maxBytes int64) (tea.Cmd, error) {
	paths := media.SplitPaths(d.images.Value())
	if len(paths) > catalog.MaxStoryImages {
		return nil, fmt.Errorf("%w: got %d", catalog.ErrTooManyImages, len(paths))
	}

	d.imageSeq++
	d.err = ""
	if len(paths) == 0 {
		d.imageBatch = nil
		d.draftImages = nil
		d.imagePaths = ""
		return nil, nil
	}

	seq := d.imageSeq
	d.pendingImages = strings.Join(paths, ",")
	d.imageBatch = media.NewBatch(len(paths))
	cmds := make([]tea.Cmd, len(paths))
	for i, p := range paths {
		cmds[i] = func() tea.Msg {
			m, err := media.Load(p, maxBytes)
			return imageReadMsg{seq: seq, index: i, media: m, err: err}
		}
	}
	return tea.Batch(cmds...), nil
}

func (d *storyDialog) loadVideo(maxBytes int64) tea.Cmd {
	d.videoSeq++
	d.err = ""
	path := strings.TrimSpace(d.video.Value())
	if path == "" {
		d.videoLoading = false
		d.draftVideo = nil
		d.videoPath = ""
		return nil
	}

	seq := d.videoSeq
	d.pendingVideo = path
	d.videoLoading = true
	return func() tea.Msg {
		m, err := media.Load(path, maxBytes)
		return videoReadMsg{seq: seq, media: m, err: err}
	}
}

// recordImage stores one read result; it reports true when the batch it
// belongs to has just completed.
func (d *storyDialog) recordImage(msg imageReadMsg) bool {
	if msg.seq != d.imageSeq || d.imageBatch == nil {
		return false
	}
	if !d.imageBatch.Record(msg.index, msg.media, msg.err) {
		return false
	}

	items, err := d.imageBatch.Result()
	if err != nil {
		d.draftImages = nil
		d.imagePaths = ""
		d.err = err.Error()
		d.submitAfterLoad = false
		return true
	}
	for _, img := range items {
		if !img.IsImage() {
			d.draftImages = nil
			d.imagePaths = ""
			d.err = fmt.Sprintf("%s is not an image (%s)", img.Name, img.MIMEType)
			d.submitAfterLoad = false
			return true
		}
	}
	d.draftImages = items
	d.imagePaths = d.pendingImages
	return true
}

func (d *storyDialog) recordVideo(msg videoReadMsg) bool {
	if msg.seq != d.videoSeq {
		return false
	}
	d.videoLoading = false
	if msg.err != nil {
		d.draftVideo = nil
		d.videoPath = ""
		d.err = msg.err.Error()
		d.submitAfterLoad = false
		return true
	}
	if !msg.media.IsVideo() {
		d.draftVideo = nil
		d.videoPath = ""
		d.err = fmt.Sprintf("%s is not a video (%s)", msg.media.Name, msg.media.MIMEType)
		d.submitAfterLoad = false
		return true
	}
	v := msg.media
	d.draftVideo = &v
	d.videoPath = d.pendingVideo
	return true
}

func (d storyDialog) attachmentStatus() string {
	var lines []string

	switch {
	case d.imageBatch != nil && !d.imageBatch.Complete():
		done, total := d.imageBatch.Progress()
		lines = append(lines, infoStyle.Render(fmt.Sprintf("Photos: loading %d/%d…", done, total)))
	case len(d.draftImages) > 0:
		var size int64
		names := make([]string, len(d.draftImages))
		for i, img := range d.draftImages {
			size += img.Size
			names[i] = img.Name
		}
		lines = append(lines, successStyle.Render(fmt.Sprintf("Photos: %d attached (%s) %s", len(d.draftImages), humanize.Bytes(uint64(size)), strings.Join(names, ", "))))
	}

	switch {
	case d.videoLoading:
		lines = append(lines, infoStyle.Render("Video: loading…"))
	case d.draftVideo != nil:
		lines = append(lines, successStyle.Render(fmt.Sprintf("Video: %s (%s)", d.draftVideo.Name, humanize.Bytes(uint64(d.draftVideo.Size)))))
	}

	return strings.Join(lines, "\n")
}

func (d storyDialog) view(width int, helpView string) string {
	label := func(f dialogField, s string) string {
		if d.focus == f {
			return focusedFieldLabelStyle.Render("› " + s)
		}
		return fieldLabelStyle.Render("  " + s)
	}

	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Share your story"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(d.locationTitle))
	b.WriteString("\n\n")
	b.WriteString(label(fieldAuthor, "Name") + "\n" + d.author.View() + "\n\n")
	b.WriteString(label(fieldText, "Story") + "\n" + d.text.View() + "\n\n")
	b.WriteString(label(fieldImages, "Photos") + "\n" + d.images.View() + "\n\n")
	b.WriteString(label(fieldVideo, "Video") + "\n" + d.video.View() + "\n")

	if status := d.attachmentStatus(); status != "" {
		b.WriteString("\n" + status + "\n")
	}
	if d.submitting {
		b.WriteString("\n" + infoStyle.Render("Publishing…") + "\n")
	}
	if d.err != "" {
		b.WriteString("\n" + errorStyle.Render(d.err) + "\n")
	}
	b.WriteString("\n" + helpView)

	return modalStyle.Width(width).Render(b.String())
}

func placeModal(width, height int, modal string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}
