// Package report renders the canvassing progress report as a PDF.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/mozillazg/go-unidecode"

	"github.com/canvasstrack/voterroll/rolldb"
)

const (
	nativeFamily = "devanagari"
	latinFamily  = "Helvetica"
)

// Report is the content of one PDF export.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Users       []rolldb.UserWiseStatsRow
	Voters      []rolldb.VoterRow
}

// Renderer lays out reports. Devanagari text needs a TTF that carries the
// glyphs; without one, native text is romanised.
type Renderer struct {
	fontPath string
	logger   *slog.Logger
}

func NewRenderer(fontPath string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		fontPath: fontPath,
		logger:   logger.With(slog.String("component", "report")),
	}
}

// Render writes rep to w as a PDF document.
func (r *Renderer) Render(w io.Writer, rep Report) error {
	pdf := r.build(rep)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// Filename is the download name for a report generated at t.
func Filename(t time.Time) string {
	return "voters_list_" + t.Format("20060102_150405") + ".pdf"
}

type column struct {
	title  string
	width  float64
	native bool
}

var voterColumns = []column{
	{"Sr No", 14, false},
	{"Voter ID", 28, false},
	{"Name (English)", 50, false},
	{"Name (Marathi)", 50, true},
	{"Relative Name", 50, true},
	{"Age", 12, false},
	{"Gender", 18, false},
	{"Status", 45, false},
}

var userColumns = []column{
	{"User Name", 90, false},
	{"Voters Marked", 40, false},
	{"First Visit", 50, false},
	{"Last Visit", 50, false},
}

type page struct {
	pdf        *fpdf.Fpdf
	haveNative bool
}

func (r *Renderer) build(rep Report) *fpdf.Fpdf {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(false, 12)
	pdf.SetTitle(rep.Title, true)
	pdf.SetCreator("voterroll", true)

	p := &page{pdf: pdf}
	if r.fontPath != "" {
		pdf.AddUTF8Font(nativeFamily, "", r.fontPath)
		if err := pdf.Error(); err != nil {
			r.logger.Warn("devanagari font unavailable, romanising native text",
				slog.String("font_path", r.fontPath),
				slog.String("error", err.Error()))
			pdf.ClearError()
		} else {
			p.haveNative = true
		}
	}

	pdf.AddPage()
	loc := rep.GeneratedAt.Location()

	pdf.SetFont(latinFamily, "B", 18)
	pdf.CellFormat(0, 10, romanize(rep.Title), "", 1, "C", false, 0, "")
	pdf.SetFont(latinFamily, "", 11)
	pdf.CellFormat(0, 7, "Generated on: "+rep.GeneratedAt.Format("02-01-2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	p.heading("User-wise Marking Statistics")
	p.header(userColumns)
	for _, u := range rep.Users {
		if u.VisitCount == 0 {
			continue
		}
		p.row(userColumns, []string{
			u.DisplayName,
			strconv.FormatInt(u.VisitCount, 10),
			formatMillis(u.FirstVisitAt.Int64, u.FirstVisitAt.Valid, loc),
			formatMillis(u.LastVisitAt.Int64, u.LastVisitAt.Valid, loc),
		})
	}
	pdf.Ln(6)

	p.heading("Complete Voter List")
	p.header(voterColumns)
	for _, v := range rep.Voters {
		p.row(voterColumns, voterCells(v))
	}
	return pdf
}

// voterCells renders one roll entry. A missing native name falls back to
// the Latin one and a missing relative prints as "-".
func voterCells(v rolldb.VoterRow) []string {
	age := ""
	if v.Age.Valid {
		age = strconv.FormatInt(v.Age.Int64, 10)
	}
	status := "Not Visited"
	if v.Visited() {
		status = v.VisitedByName.String
		if status == "" {
			status = "Visited"
		}
	}
	nativeName := v.VoterName
	if strings.TrimSpace(nativeName) == "" {
		nativeName = v.VoterNameEn
	}
	relative := v.RelativeName.String
	if strings.TrimSpace(relative) == "" {
		relative = "-"
	}
	return []string{
		strconv.FormatInt(v.SerialNo, 10),
		v.VoterID,
		v.VoterNameEn,
		nativeName,
		relative,
		age,
		GenderLabel(v.Gender.String),
		status,
	}
}

func (p *page) heading(text string) {
	p.pdf.SetFont(latinFamily, "B", 14)
	p.pdf.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
}

func (p *page) header(cols []column) {
	p.pdf.SetFont(latinFamily, "B", 9)
	p.pdf.SetFillColor(25, 118, 210)
	p.pdf.SetTextColor(255, 255, 255)
	for _, c := range cols {
		p.pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	p.pdf.Ln(-1)
	p.pdf.SetTextColor(0, 0, 0)
}

const rowHeight = 6

// row draws one table row, starting a new page with a repeated header when
// the row would cross the bottom margin.
func (p *page) row(cols []column, values []string) {
	_, pageHeight := p.pdf.GetPageSize()
	_, _, _, bottom := p.pdf.GetMargins()
	if p.pdf.GetY()+rowHeight > pageHeight-bottom {
		p.pdf.AddPage()
		p.header(cols)
	}

	for i, c := range cols {
		text := values[i]
		if c.native && p.haveNative {
			p.pdf.SetFont(nativeFamily, "", 8)
		} else {
			p.pdf.SetFont(latinFamily, "", 8)
			text = romanize(text)
		}
		p.pdf.CellFormat(c.width, rowHeight, fit(p.pdf, text, c.width-2), "1", 0, "L", false, 0, "")
	}
	p.pdf.Ln(-1)
}

// romanize maps text onto ASCII so the core fonts can draw it.
func romanize(s string) string {
	for _, r := range s {
		if r >= 0x80 {
			return strings.TrimSpace(unidecode.Unidecode(s))
		}
	}
	return s
}

// fit truncates s to width, marking the cut with "..".
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"..") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ".."
}

func formatMillis(ms int64, valid bool, loc *time.Location) string {
	if !valid {
		return "-"
	}
	return time.UnixMilli(ms).In(loc).Format("02-01-2006 15:04")
}

// GenderLabel spells out the roll's gender codes.
func GenderLabel(code string) string {
	switch strings.TrimSpace(code) {
	case "पु", "M", "m", "Male", "male":
		return "Male"
	case "स्त्री", "F", "f", "Female", "female":
		return "Female"
	default:
		return code
	}
}
