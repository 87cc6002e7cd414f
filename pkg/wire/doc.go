// Package wire defines the JSON wire format of the Blue Iris command API.
//
// Every command is a single HTTP POST of one JSON object to the server's
// /json endpoint. The object carries the command name, the session token
// and login response hash (once authenticated), followed by the command's
// parameters:
//
//	{"cmd": "camconfig", "session": "a1b2...", "response": "9f8e...", "camera": "drive", "enable": true}
//
// The server answers with a response envelope:
//
//	{"result": "success", "session": "a1b2...", "data": {...}}
//
// The result marker is checked before the payload is trusted. A "fail"
// result carries its reason in data.reason when the server provides one.
//
// # Status Classification
//
// Envelopes are classified into Success, Fail and AuthExpired. Which
// failures mean "the session is no longer valid" is not documented by the
// server, so the decision is delegated to an ExpiryClassifier. The
// DefaultExpiryClassifier matches the reasons observed from Blue Iris 4.x
// and 5.x servers.
package wire
