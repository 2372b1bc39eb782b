// Package yggdrasil is the client for self-hosted Yggdrasil-compatible
// authentication servers (authlib-injector style): API Location Indication
// discovery, metadata retrieval, password authentication with multi-profile
// resolution, token validate/refresh/invalidate, and provisioning of the
// authlib-injector agent jar that bridges a Mojang-only game client to a
// third-party provider.
package yggdrasil
