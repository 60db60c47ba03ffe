// Package config provides configuration loading for the segmentation tool.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML file: $CUSTSEG_CONFIG, ./config.yaml or ./configs/config.yaml
//	3. Environment variables prefixed with CUSTSEG_
//
// Nested sections map to underscore-joined variable names:
//
//	CUSTSEG_ANALYSIS_RFM_BINS=4
//	CUSTSEG_ANALYSIS_ANALYSIS_DATE=2011-12-10
//	CUSTSEG_OUTPUT_FORMATS=csv,excel,json
//	CUSTSEG_LOGGING_LEVEL=debug
//	CUSTSEG_STORAGE_DSN=sqlite://data/results/custseg.db
//
// # Example YAML
//
//	project_name: Customer Segmentation
//	analysis:
//	  rfm_bins: 5
//	  remove_outliers: false
//	  missing_customers: remove
//	charts:
//	  dpi: 150
//	output:
//	  formats: [csv, excel]
//
// The loaded Config is validated with struct tags (go-playground/validator)
// before being returned. Paths resolves relative directories against the
// working directory and knows the names of every artifact the pipeline writes.
package config
