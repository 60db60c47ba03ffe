package visualization

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
)

// BuiltinFamily is the font family bundled with the plotting library.
const BuiltinFamily = "Liberation"

// fontCandidate is a preferred family and the file names it ships under.
type fontCandidate struct {
	Family string
	Files  []string
}

// FontCandidates lists the preferred families in priority order.
var FontCandidates = []fontCandidate{
	{Family: "WenQuanYi Micro Hei", Files: []string{"wqy-microhei.ttc", "wqy-microhei.ttf"}},
	{Family: "Noto Sans CJK SC", Files: []string{"NotoSansCJK-Regular.ttc", "NotoSansCJKsc-Regular.otf", "NotoSansSC-Regular.otf"}},
	{Family: "Noto Serif CJK SC", Files: []string{"NotoSerifCJK-Regular.ttc", "NotoSerifCJKsc-Regular.otf"}},
	{Family: "SimHei", Files: []string{"simhei.ttf", "SimHei.ttf"}},
	{Family: "Microsoft YaHei", Files: []string{"msyh.ttc", "msyh.ttf"}},
	{Family: "Source Han Sans SC", Files: []string{"SourceHanSansSC-Regular.otf", "SourceHanSans-Regular.ttc"}},
	{Family: "DejaVu Sans", Files: []string{"DejaVuSans.ttf"}},
}

var (
	fontMu     sync.Mutex
	fontFamily = BuiltinFamily
)

// ConfigureFonts makes the first available candidate family the default for
// every chart. dirs are searched recursively. When nothing is found the
// built-in family stays in place. It returns the active family.
func ConfigureFonts(dirs []string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	fontMu.Lock()
	defer fontMu.Unlock()

	for _, candidate := range FontCandidates {
		path, ok := findFontFile(dirs, candidate.Files)
		if !ok {
			continue
		}
		face, err := loadFace(path)
		if err != nil {
			logger.Warn("Skipping unreadable font",
				slog.String("family", candidate.Family),
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}

		f := font.Font{Typeface: font.Typeface(candidate.Family)}
		font.DefaultCache.Add(font.Collection{{Font: f, Face: face}})
		plot.DefaultFont = f
		plotter.DefaultFont = f
		fontFamily = candidate.Family

		logger.Info("Chart font configured",
			slog.String("family", candidate.Family),
			slog.String("path", path))
		return fontFamily
	}

	logger.Warn("No preferred font found, using built-in font",
		slog.String("family", fontFamily),
		slog.Any("searched", dirs))
	return fontFamily
}

// ActiveFontFamily returns the family charts are rendered with.
func ActiveFontFamily() string {
	fontMu.Lock()
	defer fontMu.Unlock()
	return fontFamily
}

func findFontFile(dirs, names []string) (string, bool) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		var found string
		_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() && want[strings.ToLower(d.Name())] {
				found = path
				return filepath.SkipAll
			}
			return nil
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

// loadFace parses a TrueType/OpenType file or the first face of a collection.
func loadFace(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse collection: %w", err)
		}
		if coll.NumFonts() == 0 {
			return nil, fmt.Errorf("empty font collection")
		}
		return coll.Font(0)
	}
	return opentype.Parse(data)
}
