// Package report renders recorded runs: PNG time plots with gonum/plot and an
// interactive HTML page with go-echarts.
package report
