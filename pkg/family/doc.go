// Package family defines the family member record shared by the layout
// engine, the stores and the HTTP API.
//
// # Members
//
// A [Member] references up to two parents ([Member.ParentID],
// [Member.Parent2ID]) and an optional spouse ([Member.SpouseID]). Stored
// canvas coordinates are optional; [Member.HasCustomPosition] reports whether
// they are authoritative and must be left alone by automatic layout.
//
// # Bio tokens
//
// Older databases keep the location and the dragged position inside the
// free-text bio column as bracketed tokens:
//
//	Loves gardening.
//
//	[LOCATION:Kochi, Kerala]
//
//	[POSITION:412.5,-80]
//
// [ExtractFromBio] and [CombineToBio] convert between that encoding and the
// first-class fields. Tokens are only read from the end of the text, and
// brackets and backslashes inside the bio or location are escaped with a
// backslash, so any text survives a round trip. New stores persist the fields directly and only the
// legacy Supabase backend goes through the codec.
//
// # Validation
//
// [Validate] applies the input rules enforced before a member reaches a
// store: field lengths, gender values, birth dates, and relationship sanity
// (no self references, distinct parents).
package family
