// Package model defines the typed records returned by Blue Iris commands and
// normalizes raw response payloads into attribute families.
//
// Each command family has a parser that decodes the payload into its typed
// record (ServerInfo, Status, Camera, Clip, Alert, LogEntry, SysConfig),
// applies defaults for missing fields and keeps every field it does not know
// in an Extra bag. Normalization turns the record back into plain attribute
// values, re-emitting the Extra fields, so nothing the server sent is lost.
//
// Families without a dedicated parser are normalized generically: an object
// is stored as is, an array under "items" and a scalar under "value".
package model
