// Package msa implements the Microsoft federated-identity chain: the OAuth
// device-code flow, the Xbox Live and XSTS token exchanges, and the final
// Minecraft-services login and profile fetch.
//
// The chain is a straight pipeline. Each step returns its value or an error
// from the taxonomy in mclc/internal/auth; no step retries, and a failure at
// any stage aborts the rest of the chain.
package msa
