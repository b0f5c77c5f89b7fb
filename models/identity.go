package models

// IdentityKind katılım isteğinin kimlik türünü tanımlar.
type IdentityKind string

const (
	IdentityKindAuthenticated IdentityKind = "authenticated"
	IdentityKindGuest         IdentityKind = "guest"
)

// Identity bir join/decline/pull-out isteğinin kim adına yapıldığını taşır.
//
// Giriş yapmış kullanıcılarda Email dolu, GuestKey boştur; misafirlerde
// tersi geçerlidir. İki kapsam asla birbirinin satırıyla eşleşmez.
type Identity struct {
	Kind        IdentityKind
	Email       string // authenticated: oturumun doğruladığı e-posta
	GuestKey    string // guest: istemcinin ürettiği opak cihaz anahtarı
	DisplayName string // guest: formdaki görünen ad
}

// AuthenticatedIdentity giriş yapmış bir kullanıcı için kimlik oluşturur.
func AuthenticatedIdentity(email, displayName string) Identity {
	return Identity{Kind: IdentityKindAuthenticated, Email: email, DisplayName: displayName}
}

// GuestIdentity misafir için kimlik oluşturur.
func GuestIdentity(guestKey, displayName string) Identity {
	return Identity{Kind: IdentityKindGuest, GuestKey: guestKey, DisplayName: displayName}
}

// Valid kimliğin kendi türü için zorunlu alanları taşıyıp taşımadığını söyler.
func (i Identity) Valid() bool {
	switch i.Kind {
	case IdentityKindAuthenticated:
		return i.Email != ""
	case IdentityKindGuest:
		return i.GuestKey != "" && i.DisplayName != ""
	}
	return false
}
