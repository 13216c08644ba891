package domain

import (
	"fmt"
	"strings"
)

// ListPurpose tells what a tracked reference list is used for.
type ListPurpose string

const (
	ListCreated   ListPurpose = "created"
	ListBidOn     ListPurpose = "bid"
	ListWatchlist ListPurpose = "watchlist"
)

// ListKey returns the storage key of the reference list of an account for a
// given chain and purpose.
func ListKey(chainID uint64, account string, purpose ListPurpose) string {
	return fmt.Sprintf("%d/%s/%s", chainID, strings.ToLower(account), purpose)
}

// ReferenceList is an ordered, duplicate-free sequence of auction references.
// Its methods never modify the receiver.
type ReferenceList []AuctionRef

// Contains returns whether ref is in the list.
func (l ReferenceList) Contains(ref AuctionRef) bool {
	return l.indexOf(ref) >= 0
}

// Append returns the list with ref added at the end, and whether the list
// changed. Appending a present ref is a no-op.
func (l ReferenceList) Append(ref AuctionRef) (ReferenceList, bool) {
	if l.Contains(ref) {
		return l, false
	}
	list := make(ReferenceList, 0, len(l)+1)
	list = append(list, l...)
	return append(list, ref), true
}

// Remove returns the list without ref, and whether the list changed.
// Removing an absent ref is a no-op.
func (l ReferenceList) Remove(ref AuctionRef) (ReferenceList, bool) {
	i := l.indexOf(ref)
	if i < 0 {
		return l, false
	}
	list := make(ReferenceList, 0, len(l)-1)
	list = append(list, l[:i]...)
	return append(list, l[i+1:]...), true
}

// Tokens encodes every reference of the list, preserving order.
func (l ReferenceList) Tokens() []string {
	tokens := make([]string, 0, len(l))
	for _, ref := range l {
		tokens = append(tokens, ref.Token())
	}
	return tokens
}

func (l ReferenceList) indexOf(ref AuctionRef) int {
	for i, r := range l {
		if r == ref {
			return i
		}
	}
	return -1
}

// DecodeReferenceList decodes persisted tokens. Malformed tokens and
// duplicates are skipped and the former are reported, so that a corrupt entry
// never invalidates the rest of the list.
func DecodeReferenceList(tokens []string) (ReferenceList, []error) {
	list := make(ReferenceList, 0, len(tokens))
	var errs []error
	for _, token := range tokens {
		ref, err := DecodeRef(token)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		list, _ = list.Append(ref)
	}
	return list, errs
}
