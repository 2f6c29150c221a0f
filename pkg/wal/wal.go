package wal

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"
)

// 自己定義常用的權限常量
const (
	// rw-r--r-- (擁有者讀寫，其他人唯讀) - 適用於大多數檔案
	FileModeReadOnly fs.FileMode = 0644

	// rw------- (只有擁有者可讀寫) - 帳本資料包含個人財務，預設用這個
	FileModePrivate fs.FileMode = 0600
)

// WAL 以 JSON Lines 追加寫入的 Write-Ahead Log
type WAL struct {
	file *os.File
	mu   sync.Mutex
}

// NewWAL 開啟或建立一個 WAL 檔案
// O_RDWR讀寫模式
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
func NewWAL(path string) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileModePrivate)
	if err != nil {
		return nil, err
	}
	return &WAL{file: file}, nil
}

// Write 寫入一筆資料並刷入硬碟，回傳 nil 才算提交
//
// 寫入失敗時截回寫入前的長度，不留半筆資料在檔案中間。
func (w *WAL) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	offset, err := w.file.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if _, err := w.file.Write(data); err != nil {
		if terr := w.file.Truncate(offset); terr != nil {
			return errors.Join(err, terr)
		}
		return err
	}
	if err := w.file.Sync(); err != nil {
		if terr := w.file.Truncate(offset); terr != nil {
			return errors.Join(err, terr)
		}
		return err
	}
	return nil
}

// Sync 強制刷入硬碟
func (w *WAL) Sync() error {
	return w.file.Sync()
}

// Close 關閉檔案
func (w *WAL) Close() error {
	return w.file.Close()
}

// ReadAll 依序讀取所有紀錄
// callback 接收每一筆的原始 JSON，避免一次將所有資料載入記憶體
//
// 最後一筆若只寫了一半 (寫入途中當機)，視為未提交：停止讀取並把它截掉，
// 之後的寫入才不會接在殘片後面。
func (w *WAL) ReadAll(callback func(jsonRaw []byte) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// 確保從頭讀取
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(w.file)
	var committed int64
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return w.truncateTail(committed)
			}
			return err
		}
		committed = decoder.InputOffset()
		if err := callback(raw); err != nil {
			return err
		}
	}
}

// truncateTail 丟掉 offset 之後的殘片，保留換行讓檔案維持一行一筆
func (w *WAL) truncateTail(offset int64) error {
	if err := w.file.Truncate(offset); err != nil {
		return err
	}
	if offset == 0 {
		return w.file.Sync()
	}
	if _, err := w.file.Write([]byte{'\n'}); err != nil {
		return err
	}
	return w.file.Sync()
}
