// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	slice1KV8cN71lxRdhCLCaC40LgΞΞ = ord.NewSliceSer[float32](varint.Float32)
)

var SenderTypeMUS = senderTypeMUS{}

type senderTypeMUS struct{}

func (s senderTypeMUS) Marshal(v SenderType, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s senderTypeMUS) Unmarshal(bs []byte) (v SenderType, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = SenderType(tmp)
	return
}

func (s senderTypeMUS) Size(v SenderType) (size int) {
	return varint.Int.Size(int(v))
}

func (s senderTypeMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var IndexedDocumentMUS = indexedDocumentMUS{}

type indexedDocumentMUS struct{}

func (s indexedDocumentMUS) Marshal(v IndexedDocument, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Content, bs[n:])
	n += ord.String.Marshal(v.Source, bs[n:])
	n += slice1KV8cN71lxRdhCLCaC40LgΞΞ.Marshal(v.Vector, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s indexedDocumentMUS) Unmarshal(bs []byte) (v IndexedDocument, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = slice1KV8cN71lxRdhCLCaC40LgΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s indexedDocumentMUS) Size(v IndexedDocument) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Content)
	size += ord.String.Size(v.Source)
	size += slice1KV8cN71lxRdhCLCaC40LgΞΞ.Size(v.Vector)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s indexedDocumentMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slice1KV8cN71lxRdhCLCaC40LgΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var TurnMUS = turnMUS{}

type turnMUS struct{}

func (s turnMUS) Marshal(v Turn, bs []byte) (n int) {
	n = SenderTypeMUS.Marshal(v.Sender, bs)
	n += ord.String.Marshal(v.Message, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.Timestamp, bs[n:])
}

func (s turnMUS) Unmarshal(bs []byte) (v Turn, n int, err error) {
	v.Sender, n, err = SenderTypeMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Message, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s turnMUS) Size(v Turn) (size int) {
	size = SenderTypeMUS.Size(v.Sender)
	size += ord.String.Size(v.Message)
	return size + raw.TimeUnixMicro.Size(v.Timestamp)
}

func (s turnMUS) Skip(bs []byte) (n int, err error) {
	n, err = SenderTypeMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}
