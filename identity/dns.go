// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"net"
	"strings"

	"github.com/miekg/dns"

	"github.com/bitmark-inc/accessd/account"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/logger"
)

const (
	resolvConfFile = "/etc/resolv.conf"
	maximumServers = 3
)

// DNSDirectory - addresses published as TXT records under a domain
//
// the record for handle "alice" in domain "example.org" is looked up
// at "alice.example.org"
type DNSDirectory struct {
	log    *logger.L
	domain string
	lookup func(string) ([]string, error)
}

// NewDNSDirectory - create a DNS directory, if lookup is nil the
// system name servers are queried directly
func NewDNSDirectory(log *logger.L, domain string, lookup func(string) ([]string, error)) (*DNSDirectory, error) {
	domain = strings.Trim(strings.TrimSpace(domain), ".")
	if "" == domain {
		return nil, fault.MissingParameters
	}
	if nil == lookup {
		lookup = LookupTXT
	}
	d := &DNSDirectory{
		log:    log,
		domain: domain,
		lookup: lookup,
	}
	return d, nil
}

// Lookup - implement Directory
func (d *DNSDirectory) Lookup(handle account.Handle) (string, bool, error) {
	log := d.log
	name := handle.String() + "." + d.domain

	txts, err := d.lookup(name)
	if nil != err {
		log.Errorf("lookup TXT record: %q  error: %s", name, err)
		return "", false, err
	}

	for i, t := range txts {
		t = strings.TrimSpace(t)
		txt, err := parseTxt(t)
		if nil != err {
			log.Debugf("ignore TXT[%d]: %q  error: %s", i, t, err)
			continue
		}
		log.Infof("result[%d]: %q  address: %q  name: %q", i, name, txt.Address, txt.Name)
		return txt.Address, true, nil
	}

	return "", false, nil
}

// LookupTXT - query TXT records from the name servers in resolv.conf
//
// a name that does not exist gives an empty result, not an error
func LookupTXT(name string) ([]string, error) {
	conf, err := dns.ClientConfigFromFile(resolvConfFile)
	if nil != err {
		return nil, err
	}
	if 0 == len(conf.Servers) {
		return nil, fault.ResolutionFailed
	}

	servers := conf.Servers
	if len(servers) > maximumServers {
		servers = servers[:maximumServers]
	}

	lastErr := error(fault.ResolutionFailed)
	for _, server := range servers {
		s := net.JoinHostPort(server, conf.Port)
		c := dns.Client{}
		msg := dns.Msg{}
		msg.SetQuestion(dns.Fqdn(name), dns.TypeTXT)

		r, _, err := c.Exchange(&msg, s)
		if nil != err {
			lastErr = err
			continue
		}

		switch r.Rcode {
		case dns.RcodeSuccess:
		case dns.RcodeNameError:
			return nil, nil
		default:
			lastErr = fault.ResolutionFailed
			continue
		}

		result := make([]string, 0, len(r.Answer))
		for _, rr := range r.Answer {
			if txt, ok := rr.(*dns.TXT); ok {
				result = append(result, strings.Join(txt.Txt, ""))
			}
		}
		return result, nil
	}
	return nil, lastErr
}
