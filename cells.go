package mssqlmcp

import (
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/spf13/cast"
)

// cellText converts a scanned driver value to its rendered text. dbType is
// the column's DatabaseTypeName. Values that cannot be converted come back
// invalid and render as NULL, exactly like SQL NULL.
func cellText(v any, dbType string) sql.NullString {
	switch val := v.(type) {
	case nil:
		return sql.NullString{}
	case time.Time:
		return valid(formatTime(val, dbType))
	case []byte:
		return bytesText(val, dbType)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return sql.NullString{}
	}
	return valid(s)
}

func formatTime(t time.Time, dbType string) string {
	switch dbType {
	case "DATE":
		return t.Format("2006-01-02")
	case "TIME":
		return t.Format("15:04:05.9999999")
	case "DATETIMEOFFSET":
		return t.Format("2006-01-02 15:04:05.9999999 -07:00")
	case "SMALLDATETIME":
		return t.Format("2006-01-02 15:04:05")
	default:
		return t.Format("2006-01-02 15:04:05.9999999")
	}
}

// bytesText handles the types go-mssqldb hands back as raw bytes.
func bytesText(b []byte, dbType string) sql.NullString {
	switch dbType {
	case "UNIQUEIDENTIFIER":
		var id mssql.UniqueIdentifier
		if err := id.Scan(b); err != nil {
			return sql.NullString{}
		}
		return valid(id.String())
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY":
		return valid(string(b))
	case "BINARY", "VARBINARY", "IMAGE", "TIMESTAMP", "UDT":
		return valid("0x" + strings.ToUpper(hex.EncodeToString(b)))
	default:
		return valid(string(b))
	}
}

func valid(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
