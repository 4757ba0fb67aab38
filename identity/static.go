// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/accessd/account"
	"github.com/bitmark-inc/accessd/configuration"
	"github.com/bitmark-inc/logger"
)

// StaticDirectory - addresses from a local Lua file of the form
//
//   return {
//       alice = "address-of-alice",
//       ["bob.smith"] = "address-of-bob",
//   }
//
// the file is read again whenever it changes
type StaticDirectory struct {
	sync.RWMutex
	log      *logger.L
	fileName string
	accounts map[account.Handle]string
}

// NewStaticDirectory - load the initial table
func NewStaticDirectory(log *logger.L, fileName string) (*StaticDirectory, error) {
	fileName, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}
	s := &StaticDirectory{
		log:      log,
		fileName: fileName,
	}
	if err := s.Reload(); nil != err {
		return nil, err
	}
	return s, nil
}

// Lookup - implement Directory
func (s *StaticDirectory) Lookup(handle account.Handle) (string, bool, error) {
	s.RLock()
	address, ok := s.accounts[handle]
	s.RUnlock()
	return address, ok, nil
}

// Count - number of entries
func (s *StaticDirectory) Count() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.accounts)
}

// Reload - read the file again, on error the current table is kept
func (s *StaticDirectory) Reload() error {
	raw := make(map[string]string)
	err := configuration.ParseConfigurationFile(s.fileName, &raw)
	if nil != err {
		s.log.Errorf("read: %q  error: %s", s.fileName, err)
		return err
	}

	accounts := make(map[account.Handle]string, len(raw))
	for k, address := range raw {
		handle, err := account.Normalise(k)
		if nil != err || "" == address {
			s.log.Warnf("ignore entry: %q → %q", k, address)
			continue
		}
		accounts[handle] = address
	}

	s.Lock()
	s.accounts = accounts
	s.Unlock()

	s.log.Infof("loaded: %d accounts from: %q", len(accounts), s.fileName)
	return nil
}

// Run - background process to watch the file for changes
//
// the directory is watched so that editors which replace the file
// are noticed
func (s *StaticDirectory) Run(args interface{}, shutdown <-chan struct{}) {
	log := s.log

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		log.Errorf("watcher error: %s", err)
		<-shutdown
		return
	}
	defer watcher.Close()

	err = watcher.Add(filepath.Dir(s.fileName))
	if nil != err {
		log.Errorf("watch: %q  error: %s", s.fileName, err)
		<-shutdown
		return
	}

	log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case event, ok := <-watcher.Events:
			if !ok {
				break loop
			}
			if filepath.Clean(event.Name) != s.fileName {
				continue loop
			}
			if 0 == event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue loop
			}
			log.Debugf("event: %s", event)
			_ = s.Reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				break loop
			}
			log.Errorf("watcher error: %s", err)
		}
	}

	log.Info("stopped")
}
