// Package llm provides a provider-neutral abstraction layer over the chat
// backends that generate chess commentary.
//
// This package defines the common types, the Provider capability and the error
// taxonomy that allow the rest of the codebase to work with several backends
// (OpenAI, Anthropic, DeepSeek, Ollama) without being tied to any specific
// provider's SDK.
//
// # Core Concepts
//
//  1. Messages: ChatMessage is a single transcript turn with a role (system,
//     user, assistant) and text content.
//
//  2. Provider: the capability every backend adapter implements. AnalyzeMove
//     produces commentary for one move, Chat continues a transcript and
//     ValidateCredential performs the cheapest possible round trip.
//
//  3. Errors: AnalysisError carries one of four kinds (invalid_key,
//     rate_limit, network, unknown). ClassifyStatus is the single mapping from
//     HTTP status to kind and is shared by every adapter. Cancellation is not an
//     AnalysisError: it is reported through ErrCancelled.
//
//  4. Catalog: ProviderConfig records hold the immutable per-backend settings
//     (default model, base URL, display name, whether a models listing endpoint
//     exists). DefaultProviderConfig and Models expose the built-in catalog.
//
// # Extension Points
//
// To add a new backend:
//  1. Implement the Provider interface in a sub-package
//  2. Translate transport failures with ClassifyTransportError and non-success
//     statuses with ClassifyStatus
//  3. Register a ProviderConfig in the catalog and a constructor in the config
//     package's factory
package llm
