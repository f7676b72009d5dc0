/*
This project is the automatic timetable backend for the OpenSourceDUTH team. It builds weekly class timetables from teacher availability with the help of a generative model.
Timetable API Copyright (C) 2025 OpenSourceDUTH
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package auth

import (
	"fmt"
	"net"
)

// CanonicalizeIP converts an IP address to its canonical 16-byte string representation.
// "2001:db8::1" and "2001:db8:0:0:0:0:0:1" both produce the same output.
func CanonicalizeIP(ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	canonical := parsed.To16()
	if canonical == nil {
		return "", fmt.Errorf("failed to canonicalize IP address: %s", ip)
	}

	return canonical.String(), nil
}

// CanonicalizeIPs converts a slice of IP addresses to their canonical forms.
func CanonicalizeIPs(ips []string) ([]string, error) {
	result := make([]string, 0, len(ips))
	for _, ip := range ips {
		canonical, err := CanonicalizeIP(ip)
		if err != nil {
			return nil, err
		}
		result = append(result, canonical)
	}
	return result, nil
}

// IsIPAllowed checks if the given IP is in the allowed list.
// If the allowed list is empty, all IPs are allowed.
func IsIPAllowed(ip string, allowedIPs []string) bool {
	if len(allowedIPs) == 0 {
		return true
	}

	for _, allowed := range allowedIPs {
		if ip == allowed {
			return true
		}
	}
	return false
}
