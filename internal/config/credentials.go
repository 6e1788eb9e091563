package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "theseus"

// StorePassword saves the password of a profile in the system keyring.
func StorePassword(profile, password string) error {
	if err := keyring.Set(keyringService, profile, password); err != nil {
		return fmt.Errorf("store password for %s: %w", profile, err)
	}
	return nil
}

// LookupPassword returns the stored password of a profile, or "" when none
// is stored.
func LookupPassword(profile string) (string, error) {
	password, err := keyring.Get(keyringService, profile)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup password for %s: %w", profile, err)
	}
	return password, nil
}

// DeletePassword removes the stored password of a profile, if any.
func DeletePassword(profile string) error {
	err := keyring.Delete(keyringService, profile)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete password for %s: %w", profile, err)
	}
	return nil
}

// ResolvePassword fills in the password from the keyring when the profile
// has none of its own.
func (p *Profile) ResolvePassword() error {
	if p.Password != "" || p.Username == "" {
		return nil
	}
	password, err := LookupPassword(p.Name)
	if err != nil {
		return err
	}
	p.Password = password
	return nil
}

// StashPassword moves the profile password into the keyring so it is not
// written to the config file.
func (p *Profile) StashPassword() error {
	if p.Password == "" {
		return nil
	}
	if err := StorePassword(p.Name, p.Password); err != nil {
		return err
	}
	p.Password = ""
	return nil
}
