// Package formstore carries module-wide metadata.
package formstore

// Version is the formstore release version.
const Version = "0.3.0"
