// Package secure keeps credentials out of plain Go memory until the moment
// they are handed to the Azure SDK.
//
// Values are sealed in a memguard enclave (encrypted with XSalsa20Poly1305,
// mlocked where the platform allows it). A SecureString only exposes its
// plaintext inside Use:
//
//	s := secure.NewSecureString(os.Getenv("AZURE_CLIENT_SECRET"))
//	defer s.Destroy()
//
//	err := s.Use(func(plain []byte) error {
//	    cred, err = azidentity.NewClientSecretCredential(tenant, client, string(plain), nil)
//	    return err
//	})
//
// Call Purge before the process exits to wipe every enclave key.
package secure
