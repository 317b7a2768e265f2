// cmd/dupfolders/htmlreport.go
package main

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// sectionID marks the injected fragment so a re-run replaces the previous
// result instead of stacking a second copy into the report.
const sectionID = "duplicate-folder-groups"

const groupsFragmentTemplate = `
<section id="` + sectionID + `">
<h2>Duplicate folder groups</h2>
<p class="dupfolders-meta">{{.GroupCount}} folder group(s), {{.TotalShared}} shared, {{.TotalWasted}} recoverable. Generated {{.GeneratedAt}}.</p>
{{if .Groups}}
<table class="dupfolders-table">
<thead><tr><th>Folders</th><th>Shared size</th><th>Wasted space</th><th>Clusters</th></tr></thead>
<tbody>
{{range .Groups}}<tr><td>{{.FolderList}}</td><td title="{{.SharedBytes}} bytes">{{.SharedHuman}}</td><td title="{{.WastedBytes}} bytes">{{.WastedHuman}}</td><td>{{.ClusterCount}}</td></tr>
{{end}}</tbody>
</table>
{{range .Groups}}
<details class="dupfolders-detail">
<summary>{{.FolderList}} ({{.SharedHuman}})</summary>
{{range .Clusters}}<p class="dupfolders-cluster">Group {{.GroupID}} ({{.SizeHuman}} each):</p>
<ul>
{{range .Paths}}<li>{{.}}</li>
{{end}}</ul>
{{end}}</details>
{{end}}
{{else}}
<p>No folder groups above the size threshold.</p>
{{end}}
</section>
`

const standalonePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Duplicate folder report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #f0f0f0; }
details { margin: 0.5em 0; }
.dupfolders-meta { color: #555; }
</style>
</head>
<body>
<h1>Duplicate folder report</h1>
</body>
</html>
`

// groupView is the template-facing projection of a FolderGroup with all
// numbers preformatted.
type groupView struct {
	FolderList   string
	SharedHuman  string
	SharedBytes  string
	WastedHuman  string
	WastedBytes  string
	ClusterCount int
	Clusters     []clusterView
}

type clusterView struct {
	GroupID   string
	SizeHuman string
	Paths     []string
}

type fragmentData struct {
	GroupCount  int
	TotalShared string
	TotalWasted string
	GeneratedAt string
	Groups      []groupView
}

// renderGroupsFragment renders the folder groups into the HTML section that
// gets injected into the report.
func renderGroupsFragment(groups []FolderGroup, now time.Time) (string, error) {
	tmpl, err := template.New("groups").Parse(groupsFragmentTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing groups template: %w", err)
	}

	var totalShared, totalWasted int64
	views := make([]groupView, 0, len(groups))
	for _, g := range groups {
		totalShared += g.TotalSharedSize
		totalWasted += g.WastedSpace
		views = append(views, newGroupView(g))
	}

	data := fragmentData{
		GroupCount:  len(groups),
		TotalShared: formatBytes(totalShared),
		TotalWasted: formatBytes(totalWasted),
		GeneratedAt: now.Format("2006-01-02 15:04:05"),
		Groups:      views,
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering groups template: %w", err)
	}
	return buf.String(), nil
}

func newGroupView(g FolderGroup) groupView {
	clusterIDs := mapsKeys(g.SharedFiles)

	clusters := make([]clusterView, 0, len(clusterIDs))
	for _, groupID := range clusterIDs {
		files := g.SharedFiles[groupID]
		paths := make([]string, len(files))
		var size int64
		for i, f := range files {
			paths[i] = f.Path
			size = f.Size
		}
		sort.Strings(paths)
		clusters = append(clusters, clusterView{
			GroupID:   groupID,
			SizeHuman: formatBytes(size),
			Paths:     paths,
		})
	}

	return groupView{
		FolderList:   strings.Join(g.Folders, ", "),
		SharedHuman:  formatBytes(g.TotalSharedSize),
		SharedBytes:  formatCount(g.TotalSharedSize),
		WastedHuman:  formatBytes(g.WastedSpace),
		WastedBytes:  formatCount(g.WastedSpace),
		ClusterCount: len(g.SharedFiles),
		Clusters:     clusters,
	}
}

// injectFragment parses an existing HTML report, strips any previously
// injected section, and appends fragment to the first node matching
// selector.
func injectFragment(reportHTML io.Reader, fragment, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(reportHTML)
	if err != nil {
		return "", fmt.Errorf("parsing HTML report: %w", err)
	}

	if previous := doc.Find("#" + sectionID); previous.Length() > 0 {
		slog.Debug("Replacing previously injected section.", "count", previous.Length())
		previous.Remove()
	}

	target := doc.Find(selector)
	if target.Length() == 0 {
		return "", fmt.Errorf("selector %q matches nothing in the report", selector)
	}
	target.First().AppendHtml(fragment)

	html, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("serializing HTML report: %w", err)
	}
	return html, nil
}

// writeHTMLReport renders groups and writes the resulting HTML. When
// reportPath names an existing report the fragment is injected into it;
// otherwise a standalone page is produced. The output goes to outPath, or
// to w when outPath is empty.
func writeHTMLReport(groups []FolderGroup, reportPath, outPath, selector string, w io.Writer) error {
	fragment, err := renderGroupsFragment(groups, time.Now())
	if err != nil {
		return err
	}

	var source io.Reader
	if reportPath != "" {
		f, err := os.Open(reportPath)
		if err != nil {
			return fmt.Errorf("cannot open HTML report '%s': %w", reportPath, err)
		}
		defer f.Close()
		source = f
	} else {
		slog.Debug("No existing report given, rendering standalone page.")
		source = strings.NewReader(standalonePageTemplate)
	}

	html, err := injectFragment(source, fragment, selector)
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err = io.WriteString(w, html)
		return err
	}
	if err := os.WriteFile(outPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing HTML output '%s': %w", outPath, err)
	}
	slog.Info("HTML report written.", "path", outPath, "groups", len(groups))
	return nil
}
