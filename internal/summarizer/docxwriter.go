package summarizer

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 12
	textColor = "000000"
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reSpeaker = regexp.MustCompile(`^([^:]{1,60}):\s+(.+)$`)
)

// WriteSummaryDocx renders a markdown summary into a styled docx file
func WriteSummaryDocx(title, markdown, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}
	addRun(doc.AddParagraph(""), title, true, 16)

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || trimmed == "---":
			continue
		case reHeading.MatchString(trimmed):
			m := reHeading.FindStringSubmatch(trimmed)
			addRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
		case reBullet.MatchString(trimmed):
			m := reBullet.FindStringSubmatch(trimmed)
			addRichText(doc.AddParagraph(""), "• "+m[1])
		default:
			addRichText(doc.AddParagraph(""), trimmed)
		}
	}
	return doc.SaveTo(outputPath)
}

// WriteTranscriptDocx renders transcript text, one paragraph per line, with
// the speaker label in bold
func WriteTranscriptDocx(title, transcript, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}
	addRun(doc.AddParagraph(""), title, true, 16)
	doc.AddParagraph("")

	for _, line := range strings.Split(transcript, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		p := doc.AddParagraph("")
		if m := reSpeaker.FindStringSubmatch(trimmed); m != nil {
			addRun(p, m[1]+": ", true, fontSize)
			addRun(p, m[2], false, fontSize)
			continue
		}
		addRun(p, trimmed, false, fontSize)
	}
	return doc.SaveTo(outputPath)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	case 3:
		return 13
	default:
		return fontSize
	}
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(stripInline(text)).Font(fontName).Size(size).Color(textColor)
	if bold {
		run.Bold(true)
	}
}

// addRichText honours **bold** spans inside a line
func addRichText(p *docx.Paragraph, text string) {
	plain := reBold.Split(text, -1)
	bold := reBold.FindAllStringSubmatch(text, -1)
	for i, part := range plain {
		if part != "" {
			addRun(p, part, false, fontSize)
		}
		if i < len(bold) {
			addRun(p, bold[i][1], true, fontSize)
		}
	}
}

func stripInline(s string) string {
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
}
