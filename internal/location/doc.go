// Package location resolves location masks against geocode results and
// provides the reverse geocoder that produces those results.
package location
