// Package ports defines the driven-side interfaces of the tally engine:
// the account store and the optional distributed locker. Adapters implement
// them; the engine depends only on this package.
package ports
