// Package core provides the form state and submission pipeline for
// development proposals.
//
// This package contains all domain logic independent of any UI or transport
// layer. The web handlers, the proposalctl CLI and the tests all drive it the
// same way.
//
// # Architecture
//
// The package is organized around a few concepts:
//
//   - Form: the aggregate of location fields, one attachment, the ordered
//     project records, and the submission phase with its user message.
//   - Events: every user action is an [Event] applied by [Reducer.Reduce],
//     a pure function returning the next form and an [Effect].
//   - Controller: serializes events for one form and runs the submit effect.
//   - Transmitter: delivers the assembled [Payload]. Backends live in the
//     transport packages.
//
// # Submission
//
// A submit flows through these steps:
//
//  1. [SubmitRequested] validates the form (main fields, then attachment,
//     then project details; the first failure wins)
//  2. On success the phase becomes Submitting and [EffectSubmit] is returned
//  3. The controller encodes the attachment to base64 with [Codec]
//  4. [AssemblePayload] builds the JSON document, stamped in UTC
//  5. The [Transmitter] sends it; the outcome is reduced as
//     [SubmitSucceeded] or [SubmitFailed]
//
// Success resets the form. Failure keeps everything the user entered.
//
// # Records
//
// Every record has a permanent ID and a display number. IDs are max+1 and
// never reused; display numbers are recomputed only when a record is added
// or removed. The last record can never be removed.
//
// # Error Handling
//
// Errors are mapped to user messages with [MapError]. Each message carries a
// catalog key, translated by the i18n package, and a support code:
//
//   - VAL001-VAL006: Form validation and input errors
//   - FILE001-FILE002: Attachment size and type
//   - REC001: Record removal
//   - SUB000-SUB003: Submission outcomes
//
// # Thread Safety
//
// [Controller] is safe for concurrent use. [Form] values and the [Reducer]
// are plain values; callers own them.
package core
