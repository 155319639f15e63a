// Package prompt assembles the message sequence sent for each user turn.
package prompt
