// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package postal

import "github.com/xmidt-org/postal/postalhttp"

const (
	// DefaultCollection is the collection used when none is configured.
	DefaultCollection = "posts"

	// DefaultSuffix is appended to member paths, e.g. /posts/2.json.
	DefaultSuffix = ".json"
)

// Config is the unmarshalable configuration for a Client.
type Config struct {
	// BaseURL is the absolute root of the remote API, e.g. http://localhost:3000.
	// It is required.
	BaseURL string

	// Collection is the path of the collection beneath BaseURL.  If unset,
	// DefaultCollection is used.
	Collection string

	// Suffix is appended to the path of individual members of the collection.
	// Unlike the other fields, the empty string is honored and means no suffix.
	// DefaultConfig sets this to DefaultSuffix.
	Suffix string

	// DateFields are the fields normalized into time.Time on every response.
	// If unset, DefaultDateFields is used.
	DateFields []string

	// HTTP configures the *http.Client used when no HTTPClient is supplied
	// as an option.
	HTTP postalhttp.ClientConfig
}

// DefaultConfig returns the configuration of the standard posts collection,
// lacking only a BaseURL.  DateFields is left unset, which selects DefaultDateFields.
func DefaultConfig() Config {
	return Config{
		Collection: DefaultCollection,
		Suffix:     DefaultSuffix,
	}
}
