// Package cookie reads and writes plain, signed and encrypted cookies.
//
// A Manager carries the shared cookie attributes (Path "/", HttpOnly and
// SameSite=Lax by default) and an optional secret of at least 32 bytes.
// Separate signing and encryption keys are derived from the secret with
// HKDF. Both formats bind the value to the cookie name, so a value copied
// into another cookie is rejected.
//
//	m := cookie.New(
//		cookie.WithSecret(cfg.CookieSecret),
//		cookie.WithPreviousSecrets(cfg.OldCookieSecret),
//		cookie.WithSecure(true),
//	)
//	_ = m.SetSigned(w, "csrf", token, 0)
//	token, err := m.GetSigned(r, "csrf")
//
// Flash messages are encrypted JSON values deleted on first read, used to
// carry a notice across a redirect:
//
//	_ = m.SetFlash(w, "notice", "Post saved")
//	var notice string
//	err := m.Flash(w, r, "notice", &notice)
package cookie
