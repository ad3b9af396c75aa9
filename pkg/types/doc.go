// Package types defines the entity records, enumerations, localization
// helpers, and standard errors shared by the formstore data layer.
//
// Every entity carries an opaque UUID primary key and ISO-8601 timestamp
// strings. Localized field families store a required default-language (en)
// value plus optional hi and mr variants; the Localized* helpers apply the
// uniform fallback chain.
package types
