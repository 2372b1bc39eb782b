// Package auth holds the currency shared by the Microsoft and Yggdrasil
// authentication flows: the Session value handed to the launch component,
// the UUID dashing rules, the error taxonomy, and the on-disk session cache.
package auth
