// Package queue persists upload work orders. Items are ordered by priority
// (lower first) and then by age, so that among equal priorities the oldest
// capture is uploaded first. Fetching an item joins in its blob content.
package queue
