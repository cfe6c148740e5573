package momento

import (
	"github.com/pior/momento/wire"
)

type CacheRole int

const (
	CacheReadWrite CacheRole = iota
	CacheReadOnly
	CacheWriteOnly
)

func (r CacheRole) toWire() wire.CacheRole {
	switch r {
	case CacheReadOnly:
		return wire.CacheReadOnly
	case CacheWriteOnly:
		return wire.CacheWriteOnly
	default:
		return wire.CacheReadWrite
	}
}

type TopicRole int

const (
	TopicPublishSubscribe TopicRole = iota
	TopicSubscribeOnly
	TopicPublishOnly
)

func (r TopicRole) toWire() wire.TopicRole {
	switch r {
	case TopicSubscribeOnly:
		return wire.TopicSubscribeOnly
	case TopicPublishOnly:
		return wire.TopicPublishOnly
	default:
		return wire.TopicPublishSubscribe
	}
}

// CacheSelector is one named cache or every cache.
type CacheSelector struct {
	name string
	all  bool
}

func AllCaches() CacheSelector             { return CacheSelector{all: true} }
func CacheNamed(name string) CacheSelector { return CacheSelector{name: name} }

func (s CacheSelector) validate() error {
	if s.all {
		return nil
	}
	return validateCacheName(s.name)
}

// TopicSelector is one named topic or every topic.
type TopicSelector struct {
	name string
	all  bool
}

func AllTopics() TopicSelector             { return TopicSelector{all: true} }
func TopicNamed(name string) TopicSelector { return TopicSelector{name: name} }

func (s TopicSelector) validate() error {
	if s.all {
		return nil
	}
	return validateName("Topic", s.name)
}

// CachePermission grants Role on Cache. Key or KeyPrefix restrict it to
// matching items and are only accepted in disposable tokens.
type CachePermission struct {
	Role      CacheRole
	Cache     CacheSelector
	Key       []byte
	KeyPrefix []byte
}

type TopicPermission struct {
	Role  TopicRole
	Cache CacheSelector
	Topic TopicSelector
}

// PermissionScope is what a generated token may access.
type PermissionScope struct {
	allDataReadWrite bool
	caches           []CachePermission
	topics           []TopicPermission
}

// AllDataReadWrite grants read and write access to every cache and topic.
func AllDataReadWrite() PermissionScope {
	return PermissionScope{allDataReadWrite: true}
}

// Permissions builds a scope from explicit permissions.
func Permissions(caches []CachePermission, topics []TopicPermission) PermissionScope {
	return PermissionScope{caches: caches, topics: topics}
}

func CacheReadWriteScope(cache CacheSelector) PermissionScope {
	return cacheScope(CacheReadWrite, cache, nil, nil)
}

func CacheReadOnlyScope(cache CacheSelector) PermissionScope {
	return cacheScope(CacheReadOnly, cache, nil, nil)
}

func CacheWriteOnlyScope(cache CacheSelector) PermissionScope {
	return cacheScope(CacheWriteOnly, cache, nil, nil)
}

func TopicPublishSubscribeScope(cache CacheSelector, topic TopicSelector) PermissionScope {
	return topicScope(TopicPublishSubscribe, cache, topic)
}

func TopicSubscribeOnlyScope(cache CacheSelector, topic TopicSelector) PermissionScope {
	return topicScope(TopicSubscribeOnly, cache, topic)
}

func TopicPublishOnlyScope(cache CacheSelector, topic TopicSelector) PermissionScope {
	return topicScope(TopicPublishOnly, cache, topic)
}

// Item scopes, for disposable tokens.

func CacheKeyReadWrite(cache CacheSelector, key []byte) PermissionScope {
	return cacheScope(CacheReadWrite, cache, key, nil)
}

func CacheKeyReadOnly(cache CacheSelector, key []byte) PermissionScope {
	return cacheScope(CacheReadOnly, cache, key, nil)
}

func CacheKeyWriteOnly(cache CacheSelector, key []byte) PermissionScope {
	return cacheScope(CacheWriteOnly, cache, key, nil)
}

func CacheKeyPrefixReadWrite(cache CacheSelector, prefix []byte) PermissionScope {
	return cacheScope(CacheReadWrite, cache, nil, prefix)
}

func CacheKeyPrefixReadOnly(cache CacheSelector, prefix []byte) PermissionScope {
	return cacheScope(CacheReadOnly, cache, nil, prefix)
}

func CacheKeyPrefixWriteOnly(cache CacheSelector, prefix []byte) PermissionScope {
	return cacheScope(CacheWriteOnly, cache, nil, prefix)
}

func cacheScope(role CacheRole, cache CacheSelector, key, prefix []byte) PermissionScope {
	return PermissionScope{caches: []CachePermission{{Role: role, Cache: cache, Key: key, KeyPrefix: prefix}}}
}

func topicScope(role TopicRole, cache CacheSelector, topic TopicSelector) PermissionScope {
	return PermissionScope{topics: []TopicPermission{{Role: role, Cache: cache, Topic: topic}}}
}

// And returns a scope granting the permissions of both scopes.
func (s PermissionScope) And(other PermissionScope) PermissionScope {
	return PermissionScope{
		allDataReadWrite: s.allDataReadWrite || other.allDataReadWrite,
		caches:           append(append([]CachePermission(nil), s.caches...), other.caches...),
		topics:           append(append([]TopicPermission(nil), s.topics...), other.topics...),
	}
}

func (s PermissionScope) toWire() (wire.Permissions, error) {
	if s.allDataReadWrite {
		if len(s.caches) > 0 || len(s.topics) > 0 {
			return wire.Permissions{}, invalidArgument("AllDataReadWrite cannot be combined with explicit permissions")
		}
		return wire.Permissions{AllDataReadWrite: true}, nil
	}
	if len(s.caches) == 0 && len(s.topics) == 0 {
		return wire.Permissions{}, invalidArgument("Permission scope cannot be empty")
	}

	var p wire.Permissions
	for _, c := range s.caches {
		if err := c.Cache.validate(); err != nil {
			return wire.Permissions{}, err
		}
		if c.Key != nil && c.KeyPrefix != nil {
			return wire.Permissions{}, invalidArgument("A cache permission selects either a key or a key prefix, not both")
		}
		if c.Key != nil && len(c.Key) == 0 {
			return wire.Permissions{}, invalidArgument("Cache key cannot be empty")
		}
		p.Explicit = append(p.Explicit, wire.Permission{Cache: &wire.CachePermission{
			Role:      c.Role.toWire(),
			AllCaches: c.Cache.all,
			CacheName: c.Cache.name,
			Key:       c.Key,
			KeyPrefix: c.KeyPrefix,
		}})
	}
	for _, t := range s.topics {
		if err := t.Cache.validate(); err != nil {
			return wire.Permissions{}, err
		}
		if err := t.Topic.validate(); err != nil {
			return wire.Permissions{}, err
		}
		p.Explicit = append(p.Explicit, wire.Permission{Topic: &wire.TopicPermission{
			Role:      t.Role.toWire(),
			AllCaches: t.Cache.all,
			CacheName: t.Cache.name,
			AllTopics: t.Topic.all,
			TopicName: t.Topic.name,
		}})
	}
	return p, nil
}
