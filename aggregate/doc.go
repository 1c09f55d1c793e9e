// Package aggregate turns use case records into render-ready chart data.
//
// It holds the categorical engine shared by the dashboard widgets: tokenizing
// comma-delimited fields, frequency distributions with "Other" folding,
// cross-tabulations under a counting rule, axis ordering policies, a linear
// colour scale and drill-down queries. Everything here is pure: no I/O, no
// shared state, results are recomputed from scratch for every input.
package aggregate
