// Package visualization renders the analysis charts.
//
// Static charts are PNG files drawn with gonum/plot: RFM distributions,
// the RFM correlation heat map, the segment overview, monthly time series
// and the top countries. The interactive chart is an HTML page built with
// go-echarts. Chart text uses the first preferred font family found in the
// configured font directories and falls back to the built-in family.
package visualization
